package common

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Sink accumulates encoded bytes in emission order. It is not safe for
// concurrent use; the codec creates one per Encode call.
type Sink struct {
	buf     []byte
	scratch [8]byte
}

// NewSink returns a Sink with room for sizeHint bytes.
func NewSink(sizeHint int) *Sink {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Sink{buf: make([]byte, 0, sizeHint)}
}

// WriteTag appends a single tag byte.
func (s *Sink) WriteTag(b byte) {
	s.buf = append(s.buf, b)
}

// WriteUint appends v as a big-endian unsigned integer of width w.
// The width is always chosen by the caller; a value that does not fit is a
// programming error and panics.
func (s *Sink) WriteUint(v uint64, w Width) {
	if w == Double || w.Size() < 0 {
		panic(fmt.Sprintf("common: WriteUint with non-integer width %s", w))
	}
	if v > w.Max() {
		panic(fmt.Sprintf("common: %d does not fit %s", v, w))
	}
	switch w {
	case U8:
		s.buf = append(s.buf, byte(v))
	case U16:
		binary.BigEndian.PutUint16(s.scratch[:], uint16(v))
		s.buf = append(s.buf, s.scratch[:2]...)
	case U32:
		binary.BigEndian.PutUint32(s.scratch[:], uint32(v))
		s.buf = append(s.buf, s.scratch[:4]...)
	}
}

// WriteDouble appends f as a big-endian IEEE-754 double.
func (s *Sink) WriteDouble(f float64) {
	binary.BigEndian.PutUint64(s.scratch[:], math.Float64bits(f))
	s.buf = append(s.buf, s.scratch[:8]...)
}

// WriteText appends the raw bytes of str, one byte per byte, no re-encoding.
func (s *Sink) WriteText(str string) {
	s.buf = append(s.buf, str...)
}

// WriteRaw appends p unchanged.
func (s *Sink) WriteRaw(p []byte) {
	s.buf = append(s.buf, p...)
}

// WriteLength appends n using the three-tier length prefix.
func (s *Sink) WriteLength(n int) error {
	switch {
	case n < 0:
		return fmt.Errorf("%w: %d", ErrNegativeSize, n)
	case n < tier1Limit:
		s.WriteUint(uint64(n), U8)
	case n < tier2Limit:
		s.WriteUint(uint64(n)|tier2Mark, U16)
	case n < tier3Limit:
		s.WriteUint(uint64(n)+tier3Mark, U32)
	default:
		return fmt.Errorf("%w: %d", ErrSizeTooLarge, n)
	}
	return nil
}

// Len reports the number of bytes written so far.
func (s *Sink) Len() int { return len(s.buf) }

// Bytes finalizes the sink and returns the accumulated buffer. The sink
// must not be written to afterwards.
func (s *Sink) Bytes() []byte {
	out := s.buf
	s.buf = nil
	return out
}
