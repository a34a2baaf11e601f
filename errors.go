package tagwire

import (
	"errors"

	"github.com/rawbytedev/tagwire/internal/common"
)

// Unsupported input.
var (
	ErrInvalidType = errors.New("invalid type")
	ErrCoerce      = errors.New("value cannot be coerced to declared wire type")
	ErrInvalidKey  = errors.New("invalid record key")
	ErrSchema      = errors.New("invalid schema")
)

// Malformed stream. ErrUnexpectedEOF and ErrInvalidSize come from the
// byte cursor and are re-exported so callers need only this package.
var (
	ErrUnknownTag    = errors.New("unknown code")
	ErrKeyNotString  = errors.New("record key is not a string")
	ErrUnexpectedEOF = common.ErrUnexpectedEOF
	ErrInvalidSize   = common.ErrInvalidSize
	ErrBadOffset     = errors.New("offset outside buffer")
)

// Size limits.
var (
	ErrSizeTooLarge  = common.ErrSizeTooLarge
	ErrWidthOverflow = errors.New("value overflows declared width")
	ErrDateRange     = errors.New("date outside encodable range")
	ErrMaxDepth      = errors.New("maximum nesting depth exceeded")
)
