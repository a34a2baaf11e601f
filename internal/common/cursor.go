package common

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor reads sequentially from an immutable buffer, starting at an
// explicit offset. Reads past the end report ErrUnexpectedEOF rather than
// panicking.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a Cursor over buf positioned at offset.
func NewCursor(buf []byte, offset int) *Cursor {
	return &Cursor{buf: buf, off: offset}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.off >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.off
}

// Peek returns the next byte without consuming it. A zero byte is reported
// as ErrUnexpectedEOF just like the end of the buffer: no value on the
// wire may start with 0x00 where a lookahead happens.
func (c *Cursor) Peek() (byte, error) {
	if c.off < 0 || c.off >= len(c.buf) || c.buf[c.off] == 0 {
		return 0, fmt.Errorf("%w at offset %d", ErrUnexpectedEOF, c.off)
	}
	return c.buf[c.off], nil
}

// Skip advances past one byte.
func (c *Cursor) Skip() { c.off++ }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.off < 0 || c.off+n > len(c.buf) || c.off+n < c.off {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrUnexpectedEOF, n, c.off, c.Remaining())
	}
	p := c.buf[c.off : c.off+n]
	c.off += n
	return p, nil
}

// ReadUint reads a big-endian unsigned integer of width w.
func (c *Cursor) ReadUint(w Width) (uint64, error) {
	switch w {
	case U8:
		p, err := c.take(1)
		if err != nil {
			return 0, err
		}
		return uint64(p[0]), nil
	case U16:
		p, err := c.take(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(p)), nil
	case U32:
		p, err := c.take(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint32(p)), nil
	default:
		panic(fmt.Sprintf("common: ReadUint with non-integer width %s", w))
	}
}

// ReadDouble reads a big-endian IEEE-754 double.
func (c *Cursor) ReadDouble() (float64, error) {
	p, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(p)), nil
}

// ReadRaw returns a copy of the next n bytes.
func (c *Cursor) ReadRaw(n int) ([]byte, error) {
	p, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

// ReadText returns the next n bytes as a string, byte for byte.
func (c *Cursor) ReadText(n int) (string, error) {
	p, err := c.take(n)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadLength decodes a three-tier length prefix.
//
// The tier byte is inspected with a plain bounds check instead of Peek:
// a zero length is a legal one-byte prefix.
func (c *Cursor) ReadLength() (int, error) {
	if c.off < 0 || c.off >= len(c.buf) {
		return 0, fmt.Errorf("%w at offset %d", ErrUnexpectedEOF, c.off)
	}
	lead := c.buf[c.off]
	switch {
	case lead&0x80 == 0:
		v, err := c.ReadUint(U8)
		return int(v), err
	case lead&0x40 == 0:
		v, err := c.ReadUint(U16)
		return int(v & tier2Limit), err
	case lead&0x20 == 0:
		v, err := c.ReadUint(U32)
		return int(v & tier3Limit), err
	default:
		return 0, fmt.Errorf("%w: 0x%02x at offset %d", ErrInvalidSize, lead, c.off)
	}
}
