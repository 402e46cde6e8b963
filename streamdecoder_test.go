package bitwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDecoderNeedsMoreBytes(t *testing.T) {
	rec, err := NewRecord("Msg", nil,
		F("a", IntegerField(8)),
		F("b", IntegerField(16)),
	)
	require.NoError(t, err)

	d := NewStreamDecoder(rec)
	d.Feed([]byte{0x01})

	v, ok, err := d.TryDecode(nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, 1, d.Buffered(), "unconsumed bytes must stay buffered on EOF")
}

func TestStreamDecoderDecodesOneFrameAtATime(t *testing.T) {
	rec, err := NewRecord("Msg", nil, F("a", IntegerField(8)))
	require.NoError(t, err)

	d := NewStreamDecoder(rec)
	d.Feed([]byte{0x01, 0x02, 0x03})

	for _, want := range []uint64{1, 2, 3} {
		v, ok, err := d.TryDecode(nil)
		require.NoError(t, err)
		require.True(t, ok)
		got, _ := v.Get("a")
		assert.Equal(t, want, got)
	}

	_, ok, err := d.TryDecode(nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, d.Buffered())
}

func TestStreamDecoderFatalErrorLeavesBufferForResync(t *testing.T) {
	rec, err := NewRecord("Framed", nil,
		F("header", []byte{0xFF, 0x01}),
		F("payload", IntegerField(8)),
	)
	require.NoError(t, err)

	d := NewStreamDecoder(rec)
	d.Feed([]byte{0xFF, 0x02, 0x00}) // bad header byte

	_, ok, err := d.TryDecode(nil)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrLiteralMismatch)
	assert.Equal(t, 3, d.Buffered())

	d.Skip(1)
	assert.Equal(t, 2, d.Buffered())
}
