package tagwire

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rawbytedev/tagwire/internal/common"
)

// Dump writes one line per tag of the value starting at offset: the byte
// offset, the tag character indented by nesting depth and, for scalars,
// the decoded value. It fails on malformed input with the same errors as
// Decode, after printing the lines read so far.
//
//	000000 O
//	000001   s "age"
//	000006   P 30
//	000011 !
func Dump(w io.Writer, data []byte, offset int) error {
	if offset < 0 || offset > len(data) {
		return fmt.Errorf("%w: %d (len %d)", ErrBadOffset, offset, len(data))
	}
	bw := bufio.NewWriter(w)
	d := &decoder{
		c:   &Codec{opts: Options{MaxDepth: DefaultMaxDepth}},
		cur: common.NewCursor(data, offset),
		trace: func(at, depth int, tag byte, v Value) {
			fmt.Fprintf(bw, "%06d %s%c", at, strings.Repeat("  ", depth), tag)
			if v != nil {
				fmt.Fprintf(bw, " %s", formatScalar(v))
			}
			bw.WriteByte('\n')
		},
	}
	_, err := d.decodeValue()
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	return err
}

func formatScalar(v Value) string {
	switch x := v.(type) {
	case String:
		return fmt.Sprintf("%q", string(x))
	case Bytes:
		return fmt.Sprintf("% x", []byte(x))
	case Date:
		return x.String()
	case Float:
		return fmt.Sprintf("%g", float64(x))
	case Int:
		return fmt.Sprintf("%d", int64(x))
	case Bool:
		return fmt.Sprintf("%t", bool(x))
	}
	return v.Kind().String()
}
