package bitwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitStreamReadAdvances(t *testing.T) {
	s := NewBitStream(BitsFromBytes([]byte{0xFF, 0x00}))
	assert.Equal(t, 16, s.Remaining())

	first, err := s.Read(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFF), first.ToInt())
	assert.Equal(t, 8, s.Remaining())

	second, err := s.Read(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00), second.ToInt())
	assert.Equal(t, 0, s.Remaining())
}

func TestBitStreamPeekDoesNotAdvance(t *testing.T) {
	s := NewBitStream(BitsFromBytes([]byte{0xAB}))
	peeked, err := s.Peek(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xAB), peeked.ToInt())
	assert.Equal(t, 8, s.Remaining())

	read, err := s.Read(8)
	require.NoError(t, err)
	assert.Equal(t, peeked.ToInt(), read.ToInt())
}

func TestBitStreamEOF(t *testing.T) {
	s := NewBitStream(BitsFromBytes([]byte{0x01}))
	_, err := s.Read(9)
	assert.ErrorIs(t, err, ErrEOF)
	// A failed read must not move the cursor.
	assert.Equal(t, 8, s.Remaining())
}

func TestBitStreamExtend(t *testing.T) {
	s := NewBitStream(BitsFromBytes([]byte{0x01}))
	_, err := s.Read(16)
	assert.ErrorIs(t, err, ErrEOF)

	s.Extend(BitsFromBytes([]byte{0x02}))
	v, err := s.Read(16)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102), v.ToInt())
}

func TestBitStreamRest(t *testing.T) {
	s := NewBitStream(BitsFromBytes([]byte{0x01, 0x02}))
	_, err := s.Read(8)
	require.NoError(t, err)
	rest := s.Rest()
	assert.Equal(t, 8, rest.Len())
	assert.Equal(t, uint64(0x02), rest.ToInt())
}
