// Package common holds the byte-level primitives shared by the tagwire
// encoder and decoder: an append-only Sink, a bounds-checked Cursor and
// the three-tier length prefix both of them speak.
package common

import "errors"

// Width selects a fixed-size big-endian encoding.
type Width uint8

const (
	U8 Width = iota + 1
	U16
	U32
	Double
)

var (
	ErrUnexpectedEOF = errors.New("unexpected end of stream")
	ErrInvalidSize   = errors.New("invalid size encountered")
	ErrSizeTooLarge  = errors.New("size too large to encode")
	ErrNegativeSize  = errors.New("sizes must be positive")
)

// Length prefix tiers. A tier is chosen by magnitude; the leading bits of
// the first byte tell the reader which tier follows (0, 10, 110).
const (
	tier1Limit = 0x7F
	tier2Limit = 0x3FFF
	tier3Limit = 0x1FFFFFFF

	tier2Mark = 0x8000
	tier3Mark = 0xC0000000
)

// MaxLength is the largest length WriteLength accepts.
const MaxLength = tier3Limit - 1

// Size returns the byte width of w, or -1 for an unknown width.
func (w Width) Size() int {
	switch w {
	case U8:
		return 1
	case U16:
		return 2
	case U32:
		return 4
	case Double:
		return 8
	default:
		return -1
	}
}

// Max returns the largest unsigned magnitude w can hold. Double reports 0.
func (w Width) Max() uint64 {
	switch w {
	case U8:
		return 0xFF
	case U16:
		return 0xFFFF
	case U32:
		return 0xFFFFFFFF
	default:
		return 0
	}
}

func (w Width) String() string {
	switch w {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case Double:
		return "double"
	default:
		return "unknown"
	}
}

// LengthSize reports how many bytes WriteLength uses for n.
func LengthSize(n int) int {
	switch {
	case n < tier1Limit:
		return 1
	case n < tier2Limit:
		return 2
	default:
		return 4
	}
}
