package bitwire

import "fmt"

// FieldNode is the tagged-variant contract every field schema implements.
// Rather than a class hierarchy with one subclass per field kind, this is
// a closed set of concrete, unexported struct types behind a single
// interface — the natural sum-type encoding for Go, each variant
// implementing Length, Decode, Encode and Default directly.
type FieldNode interface {
	// Length returns the field's bit length and true if it is statically
	// known, or (0, false) otherwise.
	Length() (int, bool)

	// Decode consumes a prefix of s and returns the decoded value. proxy
	// exposes already-decoded siblings in the enclosing record by name;
	// ctx is the caller-supplied opaque value threaded through the whole
	// decode.
	Decode(s *BitStream, proxy *SiblingProxy, ctx any) (any, error)

	// Encode produces exactly Length() bits (when known) for value.
	Encode(value any, proxy *SiblingProxy, ctx any) (Bits, error)

	// Default returns the field's default value and true if one was
	// declared, or (nil, false) otherwise.
	Default() (any, bool)
}

// --- BitsField ---

type bitsField struct {
	n      int
	def    Bits
	hasDef bool
}

func (f *bitsField) Length() (int, bool) { return f.n, true }

func (f *bitsField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

func (f *bitsField) Decode(s *BitStream, _ *SiblingProxy, _ any) (any, error) {
	bits, err := s.Read(f.n)
	if err != nil {
		return nil, err
	}
	return bits, nil
}

func (f *bitsField) Encode(value any, _ *SiblingProxy, _ any) (Bits, error) {
	b, ok := value.(Bits)
	if !ok || b.Len() != f.n {
		return Bits{}, fmt.Errorf("%w: expected %d bits, got %T", ErrShapeMismatch, f.n, value)
	}
	return b, nil
}

// --- IntegerField ---
//
// Logically IntegerField is BitsField(n) composed with a built-in
// bits<->uint64 mapper; it is implemented directly here rather than
// literally wrapping a bitsField in a mapField, folding bits straight to
// an integer instead of materializing an intermediate bit-slice value.

type integerField struct {
	n      int
	def    uint64
	hasDef bool
}

func (f *integerField) Length() (int, bool) { return f.n, true }

func (f *integerField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

func (f *integerField) Decode(s *BitStream, _ *SiblingProxy, _ any) (any, error) {
	bits, err := s.Read(f.n)
	if err != nil {
		return nil, err
	}
	return bits.ToInt(), nil
}

func (f *integerField) Encode(value any, _ *SiblingProxy, _ any) (Bits, error) {
	v, err := asUint64(value)
	if err != nil {
		return Bits{}, err
	}
	return BitsFromInt(v, f.n)
}

func asUint64(value any) (uint64, error) {
	switch v := value.(type) {
	case uint64:
		return v, nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrOverflow, v)
		}
		return uint64(v), nil
	case uint:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrOverflow, v)
		}
		return uint64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: cannot interpret %T as an integer", ErrShapeMismatch, value)
	}
}

// --- BytesField ---
//
// Equivalent to ListField(IntegerField(8), n) surfaced as a byte string;
// implemented directly over Bits' byte conversion rather than literally
// through ListField, treating a byte run as a primitive rather than a
// loop over bit(8).

type bytesField struct {
	n      int
	def    []byte
	hasDef bool
}

func (f *bytesField) Length() (int, bool) { return 8 * f.n, true }

func (f *bytesField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

func (f *bytesField) Decode(s *BitStream, _ *SiblingProxy, _ any) (any, error) {
	bits, err := s.Read(8 * f.n)
	if err != nil {
		return nil, err
	}
	return bits.ToBytes()
}

func (f *bytesField) Encode(value any, _ *SiblingProxy, _ any) (Bits, error) {
	b, ok := value.([]byte)
	if !ok || len(b) != f.n {
		return Bits{}, fmt.Errorf("%w: expected %d bytes, got %T", ErrShapeMismatch, f.n, value)
	}
	return BitsFromBytes(b), nil
}

// --- StringField ---

type stringField struct {
	n        int
	encoding Encoding
	def      string
	hasDef   bool
}

func (f *stringField) Length() (int, bool) { return 8 * f.n, true }

func (f *stringField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

func (f *stringField) Decode(s *BitStream, _ *SiblingProxy, _ any) (any, error) {
	bits, err := s.Read(8 * f.n)
	if err != nil {
		return nil, err
	}
	return bits.ToStr(f.encoding)
}

func (f *stringField) Encode(value any, _ *SiblingProxy, _ any) (Bits, error) {
	str, ok := value.(string)
	if !ok {
		return Bits{}, fmt.Errorf("%w: expected string, got %T", ErrShapeMismatch, value)
	}
	bits, err := BitsFromStr(str, f.encoding)
	if err != nil {
		return Bits{}, err
	}
	if bits.Len() != 8*f.n {
		return Bits{}, fmt.Errorf("%w: string encodes to %d octets, field declares %d", ErrShapeMismatch, bits.Len()/8, f.n)
	}
	return bits, nil
}

// --- ListField ---

type listField struct {
	item   FieldNode
	n      int
	def    []any
	hasDef bool
}

func (f *listField) Length() (int, bool) {
	itemLen, ok := f.item.Length()
	if !ok {
		return 0, false
	}
	return itemLen * f.n, true
}

func (f *listField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

func (f *listField) Decode(s *BitStream, proxy *SiblingProxy, ctx any) (any, error) {
	out := make([]any, f.n)
	for i := 0; i < f.n; i++ {
		v, err := f.item.Decode(s, proxy, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *listField) Encode(value any, proxy *SiblingProxy, ctx any) (Bits, error) {
	items, ok := value.([]any)
	if !ok || len(items) != f.n {
		return Bits{}, fmt.Errorf("%w: expected %d items, got %T", ErrShapeMismatch, f.n, value)
	}
	out := Empty
	for _, item := range items {
		b, err := f.item.Encode(item, proxy, ctx)
		if err != nil {
			return Bits{}, err
		}
		out = out.Concat(b)
	}
	return out, nil
}

// --- MapField ---

type mapField struct {
	inner   FieldNode
	forward func(any) (any, error)
	back    func(any) (any, error)
	def     any
	hasDef  bool
}

func (f *mapField) Length() (int, bool) { return f.inner.Length() }

func (f *mapField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

func (f *mapField) Decode(s *BitStream, proxy *SiblingProxy, ctx any) (any, error) {
	raw, err := f.inner.Decode(s, proxy, ctx)
	if err != nil {
		return nil, err
	}
	return f.forward(raw)
}

func (f *mapField) Encode(value any, proxy *SiblingProxy, ctx any) (Bits, error) {
	raw, err := f.back(value)
	if err != nil {
		return Bits{}, err
	}
	// Opportunistic round-trip check at the earliest opportunity available:
	// verify that forward(back(value)) reproduces value, without requiring
	// forward/back to be invertible for every possible raw wire value.
	roundTripped, err := f.forward(raw)
	if err == nil && !valuesEqual(roundTripped, value) {
		return Bits{}, fmt.Errorf("%w: back(%v) then forward gives %v", ErrMapRoundtripFailure, value, roundTripped)
	}
	return f.inner.Encode(raw, proxy, ctx)
}

// --- LiteralField ---

type literalField struct {
	inner FieldNode
	value any
}

func (f *literalField) Length() (int, bool) { return f.inner.Length() }

func (f *literalField) Default() (any, bool) { return f.value, true }

func (f *literalField) Decode(s *BitStream, proxy *SiblingProxy, ctx any) (any, error) {
	v, err := f.inner.Decode(s, proxy, ctx)
	if err != nil {
		return nil, err
	}
	if !valuesEqual(v, f.value) {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrLiteralMismatch, v, f.value)
	}
	return v, nil
}

func (f *literalField) Encode(value any, proxy *SiblingProxy, ctx any) (Bits, error) {
	if !valuesEqual(value, f.value) {
		return Bits{}, fmt.Errorf("%w: got %v, want %v", ErrLiteralMismatch, value, f.value)
	}
	return f.inner.Encode(f.value, proxy, ctx)
}

// --- NestedField ---

type nestedField struct {
	record *RecordDef
	n      int
	hasN   bool
	def    *Value
	hasDef bool
}

func (f *nestedField) Length() (int, bool) {
	if f.hasN {
		return f.n, true
	}
	return f.record.Length()
}

func (f *nestedField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

func (f *nestedField) Decode(s *BitStream, _ *SiblingProxy, ctx any) (any, error) {
	n, ok := f.Length()
	if !ok {
		return nil, fmt.Errorf("%w: nested record %q has no static length", ErrMissingFieldSchema, f.record.Name())
	}
	raw, err := s.Read(n)
	if err != nil {
		return nil, err
	}
	sub := NewBitStream(raw)
	v, err := f.record.DecodeStream(sub, ctx)
	if err != nil {
		return nil, err
	}
	if sub.Remaining() != 0 {
		return nil, fmt.Errorf("%w: nested record %q left %d bits unconsumed", ErrShapeMismatch, f.record.Name(), sub.Remaining())
	}
	return v, nil
}

func (f *nestedField) Encode(value any, _ *SiblingProxy, ctx any) (Bits, error) {
	v, ok := value.(*Value)
	if !ok {
		return Bits{}, fmt.Errorf("%w: expected nested record value, got %T", ErrShapeMismatch, value)
	}
	bits, err := v.EncodeBits(ctx)
	if err != nil {
		return Bits{}, err
	}
	if f.hasN && bits.Len() != f.n {
		return Bits{}, fmt.Errorf("%w: nested record %q encoded to %d bits, field declares %d", ErrShapeMismatch, f.record.Name(), bits.Len(), f.n)
	}
	return bits, nil
}

// --- NoneField ---

type noneField struct {
	hasDef bool
}

func (f *noneField) Length() (int, bool) { return 0, true }

func (f *noneField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return nil, true
}

func (f *noneField) Decode(_ *BitStream, _ *SiblingProxy, _ any) (any, error) {
	return nil, nil
}

func (f *noneField) Encode(value any, _ *SiblingProxy, _ any) (Bits, error) {
	if value != nil {
		return Bits{}, fmt.Errorf("%w: expected none, got %T", ErrShapeMismatch, value)
	}
	return Empty, nil
}

// --- DynField ---

// Discriminator1 receives only the sibling proxy.
type Discriminator1 func(proxy *SiblingProxy) (any, error)

// Discriminator2 receives the sibling proxy and the caller-supplied context.
type Discriminator2 func(proxy *SiblingProxy, ctx any) (any, error)

// Discriminator3 receives the sibling proxy, the context, and the number of
// bits still remaining in the enclosing frame.
type Discriminator3 func(proxy *SiblingProxy, ctx any, remaining int) (any, error)

type dynField struct {
	arity  int
	fn1    Discriminator1
	fn2    Discriminator2
	fn3    Discriminator3
	def    any
	hasDef bool
}

func (f *dynField) Length() (int, bool) { return 0, false }

func (f *dynField) Default() (any, bool) {
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

func (f *dynField) selectForDecode(proxy *SiblingProxy, ctx any, remaining int) (FieldNode, error) {
	var (
		selected any
		err      error
	)
	switch f.arity {
	case 1:
		selected, err = f.fn1(proxy)
	case 2:
		selected, err = f.fn2(proxy, ctx)
	case 3:
		selected, err = f.fn3(proxy, ctx, remaining)
	default:
		return nil, fmt.Errorf("bitwire: dynamic field has invalid arity %d", f.arity)
	}
	if err != nil {
		return nil, err
	}
	node, err := liftFieldNode(selected)
	if err != nil {
		return nil, err
	}
	if _, isLiteral := node.(*literalField); !isLiteral {
		if _, hasNestedDefault := node.Default(); hasNestedDefault {
			return nil, fmt.Errorf("%w: dynamic field branch must not carry its own default", ErrNestedDefault)
		}
	}
	return node, nil
}

func (f *dynField) Decode(s *BitStream, proxy *SiblingProxy, ctx any) (any, error) {
	node, err := f.selectForDecode(proxy, ctx, s.Remaining())
	if err != nil {
		return nil, err
	}
	return node.Decode(s, proxy, ctx)
}

// Encode implements a deliberate arity-3 asymmetry: for arity 1 and 2 the
// same discriminator that decode would have called is invoked again to
// recover the branch's FieldNode. For arity 3 the discriminator is not
// re-invoked (the "bits remaining" input has no meaning on the encode
// path, since nothing has been consumed yet); instead the FieldNode is
// reconstructed from the runtime shape of value itself.
func (f *dynField) Encode(value any, proxy *SiblingProxy, ctx any) (Bits, error) {
	var node FieldNode
	switch f.arity {
	case 1:
		selected, err := f.fn1(proxy)
		if err != nil {
			return Bits{}, err
		}
		node, err = liftFieldNode(selected)
		if err != nil {
			return Bits{}, err
		}
	case 2:
		selected, err := f.fn2(proxy, ctx)
		if err != nil {
			return Bits{}, err
		}
		node, err = liftFieldNode(selected)
		if err != nil {
			return Bits{}, err
		}
	case 3:
		n, err := nodeFromValueShape(value, ctx)
		if err != nil {
			return Bits{}, err
		}
		node = n
	default:
		return Bits{}, fmt.Errorf("bitwire: dynamic field has invalid arity %d", f.arity)
	}
	return node.Encode(value, proxy, ctx)
}

// nodeFromValueShape reconstructs a FieldNode from the runtime type of an
// arity-3 dynamic field's value at encode time: a nested record value
// carries its own RecordDef and length, a byte string or text string
// carries its own length, and nil means NoneField. This is the one place
// in the core where a value's Go type, rather than a discriminator, drives
// schema selection.
//
// A nested record's own fields may themselves be dynamically sized (a
// record whose own value is selected by a remaining-bits discriminator,
// e.g. a status reply wrapping another dispatched record), so Def().
// Length() cannot always supply n: when it can't, v is actually encoded
// once up front and its resulting bit length is used instead.
func nodeFromValueShape(value any, ctx any) (FieldNode, error) {
	switch v := value.(type) {
	case *Value:
		if n, ok := v.Def().Length(); ok {
			return &nestedField{record: v.Def(), n: n, hasN: true}, nil
		}
		bits, err := v.EncodeBits(ctx)
		if err != nil {
			return nil, err
		}
		return &nestedField{record: v.Def(), n: bits.Len(), hasN: true}, nil
	case []byte:
		return &bytesField{n: len(v)}, nil
	case string:
		return &stringField{n: len([]byte(v)), encoding: UTF8}, nil
	case nil:
		return &noneField{}, nil
	default:
		return nil, fmt.Errorf("%w: cannot infer a field schema from %T", ErrShapeMismatch, value)
	}
}

// valuesEqual compares two decoded values for literal/enum/round-trip
// equality purposes. Byte slices and Bits (neither comparable with ==,
// since both carry a backing slice) compare by content; everything else
// by ==, which is sufficient for the comparable scalar types (bool, the
// sized integer types, string) that every literal/enum value in this
// package is.
func valuesEqual(a, b any) bool {
	if ab, ok := a.(Bits); ok {
		bb, ok := b.(Bits)
		return ok && bitsEqual(ab, bb)
	}
	ab, aIsBytes := a.([]byte)
	bb, bIsBytes := b.([]byte)
	if aIsBytes || bIsBytes {
		if !aIsBytes || !bIsBytes || len(ab) != len(bb) {
			return false
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}
		return true
	}
	return a == b
}

func bitsEqual(a, b Bits) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			return false
		}
	}
	return true
}
