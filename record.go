package bitwire

import "fmt"

// FieldSpec pairs a declared field's name with its raw schema — either an
// explicit FieldNode, or a bare value/type to be lifted per the precedence
// rules in builder.go's liftFieldNode.
type FieldSpec struct {
	Name string
	Raw  any
}

// F declares one named field of a record by name plus a type descriptor,
// rather than a struct-tag based scheme.
func F(name string, raw any) FieldSpec {
	return FieldSpec{Name: name, Raw: raw}
}

type recordField struct {
	name string
	node FieldNode
}

// RecordDef is a named, ordered collection of fields sharing a class/type
// identity. RecordDefs are immutable once constructed by NewRecord; the
// only way to obtain one is to fully compile a declaration.
type RecordDef struct {
	name      string
	fields    []recordField
	reorder   []int
	length    int
	hasLength bool
}

// NewRecord compiles an ordered list of field declarations into a
// RecordDef, resolving each declaration's raw schema into a FieldNode per
// liftFieldNode's precedence rules and rejecting nested defaults and
// malformed reorder permutations at compile time rather than at first
// use, a validation pre-flight performed once up front instead of on
// every decode.
func NewRecord(name string, reorder []int, specs ...FieldSpec) (*RecordDef, error) {
	fields := make([]recordField, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if seen[spec.Name] {
			return nil, fmt.Errorf("bitwire: record %q declares field %q more than once", name, spec.Name)
		}
		seen[spec.Name] = true

		node, err := liftFieldNode(spec.Raw)
		if err != nil {
			return nil, wrapField(name, spec.Name, err)
		}
		if err := checkNestedDefaults(node, true); err != nil {
			return nil, wrapField(name, spec.Name, err)
		}
		fields = append(fields, recordField{name: spec.Name, node: node})
	}

	length, hasLength := 0, true
	for _, f := range fields {
		n, ok := f.node.Length()
		if !ok {
			hasLength = false
			break
		}
		length += n
	}
	if !hasLength {
		length = 0
	}

	if len(reorder) > 0 {
		if !hasLength {
			return nil, fmt.Errorf("bitwire: record %q declares _reorder but has no static length", name)
		}
		if err := validateReorder(reorder, length); err != nil {
			return nil, err
		}
	}

	return &RecordDef{
		name:      name,
		fields:    fields,
		reorder:   reorder,
		length:    length,
		hasLength: hasLength,
	}, nil
}

// checkNestedDefaults enforces the rule that no FieldNode nested inside
// another may itself carry a default — defaults belong only to top-level
// record fields. literalField is exempt from the "has a default" check at
// every level: its Default() always reports its required constant, which
// is structural to LiteralField, not an author-supplied default subject to
// the nesting rule.
func checkNestedDefaults(node FieldNode, topLevel bool) error {
	if !topLevel {
		if _, isLiteral := node.(*literalField); !isLiteral {
			if _, hasDefault := node.Default(); hasDefault {
				return fmt.Errorf("%w: a nested field may not carry its own default", ErrNestedDefault)
			}
		}
	}
	switch n := node.(type) {
	case *listField:
		return checkNestedDefaults(n.item, false)
	case *mapField:
		return checkNestedDefaults(n.inner, false)
	case *literalField:
		return checkNestedDefaults(n.inner, false)
	}
	return nil
}

// Name returns the record's declared name.
func (r *RecordDef) Name() string {
	return r.name
}

// Length returns the record's total bit length and true if every field has
// a statically known length.
func (r *RecordDef) Length() (int, bool) {
	if !r.hasLength {
		return 0, false
	}
	return r.length, true
}

// DecodeBytes decodes exactly one record from data, failing with
// ErrExtraBits if any bits remain once the record is fully decoded.
func (r *RecordDef) DecodeBytes(data []byte, ctx any) (*Value, error) {
	s := NewBitStream(BitsFromBytes(data))
	v, err := r.DecodeStream(s, ctx)
	if err != nil {
		return nil, err
	}
	if s.Remaining() != 0 {
		return nil, fmt.Errorf("bitwire: record %q: %w (%d bits left)", r.name, ErrExtraBits, s.Remaining())
	}
	return v, nil
}

// DecodeStream decodes exactly one record from s, leaving s positioned at
// the first unconsumed bit. If the record declares a reorder permutation,
// the permutation's full bit length is read up front and unreordered
// before fields are resolved against it.
func (r *RecordDef) DecodeStream(s *BitStream, ctx any) (*Value, error) {
	if len(r.reorder) > 0 {
		raw, err := s.Read(r.length)
		if err != nil {
			return nil, err
		}
		unreordered, err := raw.Unreorder(r.reorder)
		if err != nil {
			return nil, err
		}
		return r.decodeFields(NewBitStream(unreordered), ctx)
	}
	return r.decodeFields(s, ctx)
}

func (r *RecordDef) decodeFields(s *BitStream, ctx any) (*Value, error) {
	proxy := newSiblingProxy()
	values := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		v, err := f.node.Decode(s, proxy, ctx)
		if err != nil {
			return nil, wrapField(r.name, f.name, err)
		}
		proxy.set(f.name, v)
		values[f.name] = v
	}
	return &Value{def: r, values: values}, nil
}

// Value is an immutable, structurally-equal instance of a RecordDef,
// produced either by direct construction (NewValue, for encoding) or by
// decode.
type Value struct {
	def    *RecordDef
	values map[string]any
}

// NewValue constructs a record value directly from a name→value map, for
// later encoding. Fields absent from values fall back to their FieldNode's
// default at encode time; NewValue itself performs no validation beyond
// rejecting values for fields the record doesn't declare; per-field shape
// validation happens during EncodeBits/EncodeBytes.
func NewValue(def *RecordDef, values map[string]any) (*Value, error) {
	out := make(map[string]any, len(values))
	for name, v := range values {
		found := false
		for _, f := range def.fields {
			if f.name == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("bitwire: record %q has no field %q", def.name, name)
		}
		out[name] = v
	}
	return &Value{def: def, values: out}, nil
}

// Def returns the RecordDef this value was built from.
func (v *Value) Def() *RecordDef {
	return v.def
}

// Get returns the value of field name, or (nil, false) if it was never set
// and carries no default.
func (v *Value) Get(name string) (any, bool) {
	if val, ok := v.values[name]; ok {
		return val, true
	}
	for _, f := range v.def.fields {
		if f.name == name {
			return f.node.Default()
		}
	}
	return nil, false
}

// EncodeBits encodes v's fields in declared order, concatenates them, and
// applies the record's reorder permutation if one was declared.
func (v *Value) EncodeBits(ctx any) (Bits, error) {
	proxy := newSiblingProxy()
	out := Empty
	for _, f := range v.def.fields {
		val, ok := v.values[f.name]
		if !ok {
			def, hasDef := f.node.Default()
			if !hasDef {
				return Bits{}, wrapField(v.def.name, f.name, fmt.Errorf("%w: no value supplied and field has no default", ErrMissingFieldSchema))
			}
			val = def
		}
		b, err := f.node.Encode(val, proxy, ctx)
		if err != nil {
			return Bits{}, wrapField(v.def.name, f.name, err)
		}
		proxy.set(f.name, val)
		out = out.Concat(b)
	}
	if len(v.def.reorder) > 0 {
		return out.Reorder(v.def.reorder)
	}
	return out, nil
}

// EncodeBytes encodes v and converts the result to bytes, failing with
// ErrUnaligned if the encoded length is not a multiple of 8.
func (v *Value) EncodeBytes(ctx any) ([]byte, error) {
	bits, err := v.EncodeBits(ctx)
	if err != nil {
		return nil, err
	}
	return bits.ToBytes()
}

// Equal reports whether v and other are structurally equal: same
// RecordDef and field-for-field equal values, recursing into nested
// records and lists.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.def != other.def {
		return false
	}
	for _, f := range v.def.fields {
		a, _ := v.Get(f.name)
		b, _ := other.Get(f.name)
		if !deepValuesEqual(a, b) {
			return false
		}
	}
	return true
}

func deepValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case *Value:
		bv, ok := b.(*Value)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return valuesEqual(a, b)
	}
}
