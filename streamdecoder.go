package bitwire

import (
	"errors"
	"fmt"
)

// StreamDecoder is a thin, byte-oriented façade over BitStream implementing
// a pull-one-record-at-a-time interface: feed it bytes as they arrive and
// ask it to try decoding one record at a time. It distinguishes EOF ("need
// more bytes", recoverable) from every other error (fatal for this frame),
// the same separation a transport-level short read draws from a malformed
// frame.
//
// StreamDecoder does not itself perform I/O; callers own the transport and
// call Feed with whatever bytes they read, rather than the decoder blocking
// on a socket or serial port itself.
type StreamDecoder struct {
	record *RecordDef
	buf    []byte
}

// NewStreamDecoder returns a StreamDecoder that decodes instances of
// record from whatever bytes are fed to it.
func NewStreamDecoder(record *RecordDef) *StreamDecoder {
	return &StreamDecoder{record: record}
}

// Feed appends newly-arrived bytes to the decoder's buffer.
func (d *StreamDecoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Buffered returns the number of bytes currently held, unconsumed.
func (d *StreamDecoder) Buffered() int {
	return len(d.buf)
}

// Skip discards n unconsumed bytes from the front of the buffer without
// attempting to decode them. Used by a caller resyncing after a fatal
// error, typically by scanning forward to a known framing marker — the
// scan itself is the caller's responsibility, not the decoder's.
func (d *StreamDecoder) Skip(n int) {
	d.buf = d.buf[n:]
}

// TryDecode attempts to decode exactly one record from the buffered bytes.
//
// On success, it returns the decoded value, consumes the corresponding
// prefix of the buffer, and reports ok=true.
//
// If decoding fails with ErrEOF ("need more bytes"), TryDecode leaves the
// buffer untouched and returns (nil, false, nil) — a recoverable state, not
// an error — so the caller can Feed more bytes and retry.
//
// Any other error is fatal for this frame and is returned as-is (wrapped
// with the record's name); the buffer is left untouched so the caller can
// inspect it before deciding how to resync.
func (d *StreamDecoder) TryDecode(ctx any) (*Value, bool, error) {
	s := NewBitStream(BitsFromBytes(d.buf))
	v, err := d.record.DecodeStream(s, ctx)
	if err != nil {
		if errors.Is(err, ErrEOF) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("bitwire: stream decode of record %q: %w", d.record.Name(), err)
	}

	if s.Pos()%8 != 0 {
		return nil, false, fmt.Errorf("bitwire: stream decode of record %q ended at a non-byte-aligned position %d", d.record.Name(), s.Pos())
	}
	consumed := s.Pos() / 8
	d.buf = d.buf[consumed:]
	return v, true, nil
}
