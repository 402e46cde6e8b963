package bitwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiftFieldNodeExplicitNodeUsedVerbatim(t *testing.T) {
	node := IntegerField(8)
	lifted, err := liftFieldNode(node)
	require.NoError(t, err)
	assert.Same(t, node, lifted)
}

func TestLiftFieldNodeBareByteString(t *testing.T) {
	node, err := liftFieldNode([]byte{0xAB, 0xCD})
	require.NoError(t, err)
	lit, ok := node.(*literalField)
	require.True(t, ok)
	assert.Equal(t, []byte{0xAB, 0xCD}, lit.value)
	n, ok := node.Length()
	require.True(t, ok)
	assert.Equal(t, 16, n)
}

func TestLiftFieldNodeBareTextString(t *testing.T) {
	node, err := liftFieldNode("hi")
	require.NoError(t, err)
	lit, ok := node.(*literalField)
	require.True(t, ok)
	assert.Equal(t, "hi", lit.value)
}

func TestLiftFieldNodeNone(t *testing.T) {
	node, err := liftFieldNode(nil)
	require.NoError(t, err)
	_, ok := node.(*noneField)
	assert.True(t, ok)
}

func TestLiftFieldNodeRecordType(t *testing.T) {
	inner, err := NewRecord("Inner", nil, F("a", IntegerField(8)))
	require.NoError(t, err)
	node, err := liftFieldNode(inner)
	require.NoError(t, err)
	nested, ok := node.(*nestedField)
	require.True(t, ok)
	assert.Same(t, inner, nested.record)
}

func TestLiftFieldNodeUnresolvable(t *testing.T) {
	_, err := liftFieldNode(3.14)
	assert.ErrorIs(t, err, ErrMissingFieldSchema)
}

func TestFieldDefaultAppliedWhenValueOmitted(t *testing.T) {
	rec, err := NewRecord("Defaults", nil,
		F("a", IntegerField(8, WithDefault(uint64(42)))),
		F("b", IntegerField(8)),
	)
	require.NoError(t, err)

	v, err := NewValue(rec, map[string]any{"b": uint64(1)})
	require.NoError(t, err)

	encoded, err := v.EncodeBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{42, 1}, encoded)
}

func TestFieldMissingValueAndDefaultFails(t *testing.T) {
	rec, err := NewRecord("NoDefault", nil, F("a", IntegerField(8)))
	require.NoError(t, err)

	v, err := NewValue(rec, map[string]any{})
	require.NoError(t, err)

	_, err = v.EncodeBytes(nil)
	assert.ErrorIs(t, err, ErrMissingFieldSchema)
}

func TestBoolFieldEncoding(t *testing.T) {
	node := BoolField()
	bits, err := node.Encode(true, newSiblingProxy(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bits.ToInt())

	bits, err = node.Encode(false, newSiblingProxy(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bits.ToInt())
}
