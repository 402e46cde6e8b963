package bitwire

import "fmt"

// fieldOptions carries a field constructor's optional arguments (default
// value, explicit length) as a small set of functional options, the same
// shape pgx's Connect/ParseConfig options take in the rest of the retrieved
// pack — idiomatic for a builder API with several independent optional
// knobs rather than boolean-parameter soup.
type fieldOptions struct {
	hasDefault bool
	def        any
	length     int
	hasLength  bool
}

// FieldOption configures an optional argument of a field constructor.
type FieldOption func(*fieldOptions)

// WithDefault declares a field's default value, applied on encode when the
// caller omits that field from a record value.
func WithDefault(v any) FieldOption {
	return func(o *fieldOptions) {
		o.hasDefault = true
		o.def = v
	}
}

// WithLength declares an explicit bit length, used by NestedField when the
// referenced record has no statically known length of its own.
func WithLength(n int) FieldOption {
	return func(o *fieldOptions) {
		o.length = n
		o.hasLength = true
	}
}

func resolveOptions(opts []FieldOption) fieldOptions {
	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BitsField declares an n-bit sequence of raw bits.
func BitsField(n int, opts ...FieldOption) FieldNode {
	o := resolveOptions(opts)
	f := &bitsField{n: n}
	if o.hasDefault {
		f.def = o.def.(Bits)
		f.hasDef = true
	}
	return f
}

// IntegerField declares an n-bit big-endian unsigned integer.
func IntegerField(n int, opts ...FieldOption) FieldNode {
	o := resolveOptions(opts)
	f := &integerField{n: n}
	if o.hasDefault {
		v, err := asUint64(o.def)
		if err != nil {
			panic(fmt.Sprintf("bitwire: IntegerField default: %v", err))
		}
		f.def = v
		f.hasDef = true
	}
	return f
}

// BoolField is IntegerField(1) composed with a bool mapper: true = 1, false
// = 0, the "integer-as-bool" convenience mapper.
func BoolField(opts ...FieldOption) FieldNode {
	o := resolveOptions(opts)
	inner := &integerField{n: 1}
	forward := func(raw any) (any, error) { return raw.(uint64) != 0, nil }
	back := func(value any) (any, error) {
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected bool, got %T", ErrShapeMismatch, value)
		}
		if b {
			return uint64(1), nil
		}
		return uint64(0), nil
	}
	mf := &mapField{inner: inner, forward: forward, back: back}
	if o.hasDefault {
		mf.def = o.def
		mf.hasDef = true
	}
	return mf
}

// EnumValue is the constraint satisfied by any Go enum type usable with
// IntEnum: a defined type over one of the unsigned or signed integer kinds
// the wire format can fold to/from.
type EnumValue interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int | ~int8 | ~int16 | ~int32 | ~int64
}

// IntEnum declares the "integer-as-enum" convenience mapper:
// an n-bit integer that round-trips through one of a closed set of valid
// enum values, failing with ErrMapRoundtripFailure on any other value.
func IntEnum[E EnumValue](n int, valid []E, opts ...FieldOption) FieldNode {
	o := resolveOptions(opts)
	validSet := make(map[uint64]bool, len(valid))
	for _, v := range valid {
		validSet[uint64(v)] = true
	}
	forward := func(raw any) (any, error) {
		u := raw.(uint64)
		if !validSet[u] {
			return nil, fmt.Errorf("%w: %d is not a declared enum value", ErrMapRoundtripFailure, u)
		}
		return E(u), nil
	}
	back := func(value any) (any, error) {
		e, ok := value.(E)
		if !ok {
			return nil, fmt.Errorf("%w: expected enum value, got %T", ErrShapeMismatch, value)
		}
		if !validSet[uint64(e)] {
			return nil, fmt.Errorf("%w: %v is not a declared enum value", ErrMapRoundtripFailure, e)
		}
		return uint64(e), nil
	}
	mf := &mapField{inner: &integerField{n: n}, forward: forward, back: back}
	if o.hasDefault {
		mf.def = o.def
		mf.hasDef = true
	}
	return mf
}

// BytesField declares an n-octet byte string.
func BytesField(n int, opts ...FieldOption) FieldNode {
	o := resolveOptions(opts)
	f := &bytesField{n: n}
	if o.hasDefault {
		f.def = o.def.([]byte)
		f.hasDef = true
	}
	return f
}

// StringField declares an n-octet text field under encoding (default
// UTF8 when encoding is nil).
func StringField(n int, encoding Encoding, opts ...FieldOption) FieldNode {
	if encoding == nil {
		encoding = UTF8
	}
	o := resolveOptions(opts)
	f := &stringField{n: n, encoding: encoding}
	if o.hasDefault {
		f.def = o.def.(string)
		f.hasDef = true
	}
	return f
}

// ListField declares a ListField of n copies of item, where item is any
// value accepted by liftFieldNode (an explicit FieldNode, or a bare value
// lifted per liftFieldNode's rules).
func ListField(item any, n int, opts ...FieldOption) (FieldNode, error) {
	itemNode, err := liftFieldNode(item)
	if err != nil {
		return nil, err
	}
	if err := checkNestedDefaults(itemNode, false); err != nil {
		return nil, err
	}
	o := resolveOptions(opts)
	f := &listField{item: itemNode, n: n}
	if o.hasDefault {
		f.def = o.def.([]any)
		f.hasDef = true
	}
	return f, nil
}

// MapField declares a MapField wrapping inner (lifted per liftFieldNode)
// with the given forward/back bijection.
func MapField(inner any, forward, back func(any) (any, error), opts ...FieldOption) (FieldNode, error) {
	innerNode, err := liftFieldNode(inner)
	if err != nil {
		return nil, err
	}
	if err := checkNestedDefaults(innerNode, false); err != nil {
		return nil, err
	}
	o := resolveOptions(opts)
	f := &mapField{inner: innerNode, forward: forward, back: back}
	if o.hasDefault {
		f.def = o.def
		f.hasDef = true
	}
	return f, nil
}

// LiteralField declares a LiteralField wrapping inner (lifted per
// liftFieldNode) that requires value on both decode and encode.
func LiteralField(inner any, value any) (FieldNode, error) {
	innerNode, err := liftFieldNode(inner)
	if err != nil {
		return nil, err
	}
	if err := checkNestedDefaults(innerNode, false); err != nil {
		return nil, err
	}
	return &literalField{inner: innerNode, value: value}, nil
}

// NestedField declares a field whose value is an instance of record. If
// record has no statically known length, WithLength must supply one.
func NestedField(record *RecordDef, opts ...FieldOption) (FieldNode, error) {
	o := resolveOptions(opts)
	f := &nestedField{record: record}
	if o.hasLength {
		f.n = o.length
		f.hasN = true
	} else if n, ok := record.Length(); ok {
		f.n = n
		f.hasN = true
	} else {
		return nil, fmt.Errorf("%w: nested record %q has no static length; supply WithLength", ErrMissingFieldSchema, record.Name())
	}
	if o.hasDefault {
		v, ok := o.def.(*Value)
		if !ok {
			return nil, fmt.Errorf("%w: NestedField default for %q must be a *Value", ErrShapeMismatch, record.Name())
		}
		f.def = v
		f.hasDef = true
	}
	return f, nil
}

// NoneField declares the absence of a value.
func NoneField(opts ...FieldOption) FieldNode {
	o := resolveOptions(opts)
	return &noneField{hasDef: o.hasDefault}
}

// Dynamic declares a DynField selected at decode time by fn, which must be
// a Discriminator1, Discriminator2, or Discriminator3 (or a func literal
// matching one of those three signatures).
func Dynamic(fn any, opts ...FieldOption) (FieldNode, error) {
	o := resolveOptions(opts)
	f := &dynField{}
	switch cb := fn.(type) {
	case Discriminator1:
		f.arity, f.fn1 = 1, cb
	case func(*SiblingProxy) (any, error):
		f.arity, f.fn1 = 1, cb
	case Discriminator2:
		f.arity, f.fn2 = 2, cb
	case func(*SiblingProxy, any) (any, error):
		f.arity, f.fn2 = 2, cb
	case Discriminator3:
		f.arity, f.fn3 = 3, cb
	case func(*SiblingProxy, any, int) (any, error):
		f.arity, f.fn3 = 3, cb
	default:
		return nil, fmt.Errorf("bitwire: dynamic field callback must have arity 1, 2, or 3, got %T", fn)
	}
	if o.hasDefault {
		f.def = o.def
		f.hasDef = true
	}
	return f, nil
}

// liftFieldNode resolves a raw field declaration into a FieldNode,
// implementing the following precedence rules:
//
//  1. an explicit FieldNode is used verbatim;
//  2. a bare byte string or text string is lifted into a LiteralField of
//     its own length, whose required constant serves as its default; nil
//     is lifted into a NoneField and a *RecordDef with a static length into
//     a NestedField of that length, and neither of these carries a default;
//  3/4. (Go has no separate "type annotation" channel distinct from a
//     value, so rules 3 and 4 collapse into the same dispatch as rule 2);
//  5. anything else fails with ErrMissingFieldSchema.
//
// This function is also how a Dynamic field's selected branch (a FieldNode,
// a *RecordDef, or a built-in constant) is lifted, per the DynField
// contract.
func liftFieldNode(raw any) (FieldNode, error) {
	switch v := raw.(type) {
	case FieldNode:
		return v, nil
	case *RecordDef:
		n, ok := v.Length()
		if !ok {
			return nil, fmt.Errorf("%w: record %q has no static length", ErrMissingFieldSchema, v.Name())
		}
		return &nestedField{record: v, n: n, hasN: true}, nil
	case []byte:
		return &literalField{inner: &bytesField{n: len(v)}, value: v}, nil
	case string:
		raw := []byte(v)
		return &literalField{inner: &stringField{n: len(raw), encoding: UTF8}, value: v}, nil
	case nil:
		return &noneField{}, nil
	default:
		return nil, fmt.Errorf("%w: cannot resolve %T to a field schema", ErrMissingFieldSchema, raw)
	}
}
