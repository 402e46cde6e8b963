package bitwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsFromIntToInt(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		n     int
	}{
		{"zero", 0, 8},
		{"max byte", 255, 8},
		{"mid width", 1251, 16},
		{"single bit set", 1, 1},
		{"single bit unset", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits, err := BitsFromInt(tt.value, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.n, bits.Len())
			assert.Equal(t, tt.value, bits.ToInt())
		})
	}
}

func TestBitsFromIntOverflow(t *testing.T) {
	_, err := BitsFromInt(256, 8)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestBitsFromIntInvalidWidth(t *testing.T) {
	_, err := BitsFromInt(0, 0)
	assert.ErrorIs(t, err, ErrInvalidWidth)

	_, err = BitsFromInt(0, -1)
	assert.ErrorIs(t, err, ErrInvalidWidth)
}

func TestBitsFromBytesToBytes(t *testing.T) {
	data := []byte{0x01, 0x00, 0x02}
	bits := BitsFromBytes(data)
	assert.Equal(t, 24, bits.Len())

	back, err := bits.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestBitsToBytesUnaligned(t *testing.T) {
	bits, err := BitsFromInt(5, 5)
	require.NoError(t, err)
	_, err = bits.ToBytes()
	assert.ErrorIs(t, err, ErrUnaligned)
}

func TestBitsMSBFirst(t *testing.T) {
	// 0xE3 = 1110 0011, so bit 0 (MSB) must be true and bit 7 (LSB) true.
	bits := BitsFromBytes([]byte{0xE3})
	assert.True(t, bits.At(0))
	assert.True(t, bits.At(1))
	assert.True(t, bits.At(2))
	assert.False(t, bits.At(3))
	assert.False(t, bits.At(4))
	assert.False(t, bits.At(5))
	assert.True(t, bits.At(6))
	assert.True(t, bits.At(7))
}

func TestBitsConcatAndSlice(t *testing.T) {
	a, _ := BitsFromInt(0b101, 3)
	b, _ := BitsFromInt(0b11, 2)
	combined := a.Concat(b)
	assert.Equal(t, 5, combined.Len())
	assert.Equal(t, uint64(0b10111), combined.ToInt())

	assert.Equal(t, a.ToInt(), combined.Slice(0, 3).ToInt())
	assert.Equal(t, b.ToInt(), combined.Slice(3, 5).ToInt())
}

func TestBitsStrRoundTripUTF8(t *testing.T) {
	bits, err := BitsFromStr("hello", UTF8)
	require.NoError(t, err)
	str, err := bits.ToStr(UTF8)
	require.NoError(t, err)
	assert.Equal(t, "hello", str)
}

func TestBitsStrRoundTripUTF16(t *testing.T) {
	bits, err := BitsFromStr("hi", UTF16)
	require.NoError(t, err)
	assert.Equal(t, 32, bits.Len())
	str, err := bits.ToStr(UTF16)
	require.NoError(t, err)
	assert.Equal(t, "hi", str)
}

func TestBitsReorderUnreorderInvolution(t *testing.T) {
	// unreorder(reorder(bits, P), P) == bits for any P.
	perm := []int{3, 2, 1, 0, 4, 5, 6, 7}
	original := BitsFromBytes([]byte{0b10110010})

	reordered, err := original.Reorder(perm)
	require.NoError(t, err)
	back, err := reordered.Unreorder(perm)
	require.NoError(t, err)
	assert.True(t, bitsEqual(original, back))
}

func TestBitsReorderBadPermutation(t *testing.T) {
	original := BitsFromBytes([]byte{0xFF})

	_, err := original.Reorder([]int{0, 0})
	assert.ErrorIs(t, err, ErrBadReorder)

	_, err = original.Reorder([]int{8})
	assert.ErrorIs(t, err, ErrBadReorder)
}
