package tagwire

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rawbytedev/tagwire/internal/common"
)

// Tag bytes. Each encoded value starts with one of these.
const (
	tagPosInt8    = '+'
	tagNegInt8    = '-'
	tagPosInt16   = 'p'
	tagNegInt16   = 'i'
	tagPosInt32   = 'P'
	tagNegInt32   = 'I'
	tagDouble     = 'd'
	tagString     = 's'
	tagBytes      = 'B'
	tagTrue       = 't'
	tagFalse      = 'f'
	tagDateSecond = 'T'
	tagDateMilli  = 'D'
	tagObject     = 'O'
	tagArray      = 'a'
	tagSet        = 'S'
	tagMap        = 'M'
	tagEnd        = '!'
)

// DefaultMaxDepth bounds container nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 1000

// KeyPolicy decides what happens to a record key that does not match
// [A-Za-z0-9_.-]*.
type KeyPolicy uint8

const (
	// KeyReject fails the encode with ErrInvalidKey.
	KeyReject KeyPolicy = iota
	// KeyDrop omits the key but still writes its value. Streams written
	// this way pair keys and values wrongly on decode; it exists only to
	// reproduce buffers from older writers byte for byte.
	KeyDrop
)

// ParseKeyPolicy accepts "reject" or "drop".
func ParseKeyPolicy(s string) (KeyPolicy, error) {
	switch s {
	case "", "reject":
		return KeyReject, nil
	case "drop":
		return KeyDrop, nil
	}
	return 0, fmt.Errorf("unknown key policy %q", s)
}

func (p KeyPolicy) String() string {
	if p == KeyDrop {
		return "drop"
	}
	return "reject"
}

// WidthPolicy decides what happens when a schema-declared integer width
// is too narrow for the value.
type WidthPolicy uint8

const (
	// WidthFailFast fails the encode with ErrWidthOverflow.
	WidthFailFast WidthPolicy = iota
	// WidthTruncate keeps the low bits of the magnitude.
	WidthTruncate
)

// ParseWidthPolicy accepts "fail" or "truncate".
func ParseWidthPolicy(s string) (WidthPolicy, error) {
	switch s {
	case "", "fail":
		return WidthFailFast, nil
	case "truncate":
		return WidthTruncate, nil
	}
	return 0, fmt.Errorf("unknown width policy %q", s)
}

func (p WidthPolicy) String() string {
	if p == WidthTruncate {
		return "truncate"
	}
	return "fail"
}

// Options tunes a Codec. The zero value is the safe default.
type Options struct {
	KeyPolicy   KeyPolicy
	WidthPolicy WidthPolicy
	// MaxDepth limits container nesting on encode and decode.
	MaxDepth int
	// SizeHint preallocates the output buffer of Encode.
	SizeHint int
	// Logger receives warnings for keys dropped and widths truncated by
	// the compatibility policies. Nil discards them.
	Logger *slog.Logger
}

// Codec converts between Values and the tagged byte stream. A Codec is
// safe for concurrent use: every call works on its own buffer and the
// schema is copied at construction.
type Codec struct {
	schema Schema
	opts   Options
	log    *slog.Logger
}

// NewCodec returns a Codec that forces the representations declared in
// schema. A nil schema means every value is inferred.
func NewCodec(schema Schema, opts Options) (*Codec, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.SizeHint <= 0 {
		opts.SizeHint = 64
	}
	lg := opts.Logger
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Codec{
		schema: schema.Clone(),
		opts:   opts,
		log:    lg.With("schema", fmt.Sprintf("%016x", schema.Fingerprint())),
	}, nil
}

// Schema returns a copy of the codec's schema.
func (c *Codec) Schema() Schema { return c.schema.Clone() }

// Options returns the effective options.
func (c *Codec) Options() Options { return c.opts }

// Encode linearizes v. Either the whole value is written or an error is
// returned; there is no partial output.
func (c *Codec) Encode(v Value) ([]byte, error) {
	e := &encoder{c: c, sink: common.NewSink(c.opts.SizeHint)}
	if err := e.encodeValue(v, Field{}, false); err != nil {
		return nil, err
	}
	return e.sink.Bytes(), nil
}

// Decode reads one value from the start of data. Bytes after the value
// are ignored.
func (c *Codec) Decode(data []byte) (Value, error) {
	v, _, err := c.DecodeAt(data, 0)
	return v, err
}

// DecodeAt reads one value starting at offset and returns it together with
// the offset just past it, so concatenated values can be read in turn.
func (c *Codec) DecodeAt(data []byte, offset int) (Value, int, error) {
	if offset < 0 || offset > len(data) {
		return nil, 0, fmt.Errorf("%w: %d (len %d)", ErrBadOffset, offset, len(data))
	}
	d := &decoder{c: c, cur: common.NewCursor(data, offset)}
	v, err := d.decodeValue()
	if err != nil {
		return nil, 0, err
	}
	return v, d.cur.Offset(), nil
}

// Marshal encodes a Value or any Go value FromGo accepts.
func (c *Codec) Marshal(x any) ([]byte, error) {
	v, ok := x.(Value)
	if !ok {
		var err error
		if v, err = FromGo(x); err != nil {
			return nil, err
		}
	}
	return c.Encode(v)
}

// Unmarshal decodes data and converts the result with ToGo.
func (c *Codec) Unmarshal(data []byte) (any, error) {
	v, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	return ToGo(v), nil
}
