package tagwire

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rawbytedev/tagwire/internal/common"
)

type encoder struct {
	c     *Codec
	sink  *common.Sink
	depth int
	path  []string
}

func (e *encoder) errorf(sentinel error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if len(e.path) == 0 {
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	return fmt.Errorf("%w at %s: %s", sentinel, strings.Join(e.path, "."), msg)
}

func (e *encoder) push(seg string) { e.path = append(e.path, seg) }
func (e *encoder) pop()            { e.path = e.path[:len(e.path)-1] }

// enter opens one container level. Only containers count toward MaxDepth,
// matching the decoder.
func (e *encoder) enter() error {
	if e.depth >= e.c.opts.MaxDepth {
		return e.errorf(ErrMaxDepth, "depth %d", e.depth+1)
	}
	e.depth++
	return nil
}

func (e *encoder) leave() { e.depth-- }

// encodeValue writes v, forcing decl when declared is true.
func (e *encoder) encodeValue(v Value, decl Field, declared bool) error {
	if declared {
		return e.encodeDeclared(v, decl)
	}
	return e.encodeInferred(v)
}

// encodeInferred picks the representation from the value itself.
func (e *encoder) encodeInferred(v Value) error {
	switch x := v.(type) {
	case Array:
		return e.encodeArray(x, e.c.schema, nil)
	case *Set:
		return e.encodeSet(x.Members())
	case *Map:
		return e.encodeMap(x, e.c.schema)
	case Date:
		return e.encodeDate(x)
	case *Object:
		return e.encodeObject(x, e.c.schema)
	case String:
		return e.encodeString(string(x))
	case Bytes:
		return e.encodeBytes(x)
	case Int:
		e.encodeInt(int64(x))
		return nil
	case Float:
		e.sink.WriteTag(tagDouble)
		e.sink.WriteDouble(float64(x))
		return nil
	case Bool:
		e.encodeBool(bool(x))
		return nil
	}
	return e.errorf(ErrInvalidType, "%T", v)
}

// encodeDeclared writes v in the representation the schema forces. An
// array under a primitive declaration has the declaration applied to each
// element.
func (e *encoder) encodeDeclared(v Value, f Field) error {
	if v == nil {
		return e.errorf(ErrInvalidType, "nil value")
	}
	if f.IsNested() {
		switch x := v.(type) {
		case *Object:
			return e.encodeObject(x, f.nested)
		case Array:
			return e.encodeArray(x, f.nested, nil)
		case *Map:
			return e.encodeMap(x, f.nested)
		}
		return e.errorf(ErrCoerce, "%s for nested schema", v.Kind())
	}
	if a, ok := v.(Array); ok && f.typ != WireSet {
		return e.encodeArray(a, e.c.schema, &f)
	}
	switch f.typ {
	case WireU8, WireU16, WireU32, WireDouble:
		return e.encodeDeclaredNumber(v, f.typ)
	case WireString:
		s, err := e.textOf(v)
		if err != nil {
			return err
		}
		return e.encodeString(s)
	case WireDate:
		d, err := e.dateOf(v)
		if err != nil {
			return err
		}
		return e.encodeDate(d)
	case WireBool:
		e.encodeBool(truthy(v))
		return nil
	case WireSet:
		switch x := v.(type) {
		case *Set:
			return e.encodeSet(x.Members())
		case Array:
			return e.encodeSet(NewSet(x...).Members())
		}
	case WireMap:
		switch x := v.(type) {
		case *Map:
			return e.encodeMap(x, nil)
		case *Object:
			m := NewMap()
			x.Range(func(k string, fv Value) bool {
				m.Set(String(k), fv)
				return true
			})
			return e.encodeMap(m, nil)
		}
	}
	return e.errorf(ErrCoerce, "%s to %s", v.Kind(), f.typ)
}

// encodeObject writes a generic record whose keys are looked up in scope.
func (e *encoder) encodeObject(o *Object, scope Schema) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	e.sink.WriteTag(tagObject)
	var err error
	o.Range(func(k string, v Value) bool {
		e.push(k)
		defer e.pop()
		if err = e.encodeKey(k); err != nil {
			return false
		}
		f, ok := scope.Lookup(k)
		err = e.encodeValue(v, f, ok)
		return err == nil
	})
	if err != nil {
		return err
	}
	e.sink.WriteTag(tagEnd)
	return nil
}

// encodeKey writes a record key as a plain string, applying the key policy
// to names outside [A-Za-z0-9_.-]*.
func (e *encoder) encodeKey(k string) error {
	if validKey(k) {
		return e.encodeString(k)
	}
	if e.c.opts.KeyPolicy == KeyDrop {
		e.c.log.Warn("dropping invalid record key", "key", k, "path", strings.Join(e.path, "."))
		return nil
	}
	return e.errorf(ErrInvalidKey, "%q", k)
}

func validKey(k string) bool {
	for i := 0; i < len(k); i++ {
		c := k[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '.', c == '-':
		default:
			return false
		}
	}
	return true
}

// encodeArray writes a dense array. When the first element is an object
// the array is treated as an array of records looked up in scope;
// otherwise elem, when set, is forced on every element.
func (e *encoder) encodeArray(a Array, scope Schema, elem *Field) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	e.sink.WriteTag(tagArray)
	records := elem == nil && len(a) > 0 && a[0] != nil && a[0].Kind() == KindObject
	for i, v := range a {
		e.push(strconv.Itoa(i))
		var err error
		switch {
		case records && v != nil && v.Kind() == KindObject:
			err = e.encodeObject(v.(*Object), scope)
		case elem != nil:
			err = e.encodeValue(v, *elem, true)
		default:
			err = e.encodeValue(v, Field{}, false)
		}
		e.pop()
		if err != nil {
			return err
		}
	}
	e.sink.WriteTag(tagEnd)
	return nil
}

// encodeSet writes members without consulting any schema.
func (e *encoder) encodeSet(members []Value) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	e.sink.WriteTag(tagSet)
	for i, m := range members {
		e.push(strconv.Itoa(i))
		err := e.encodeValue(m, Field{}, false)
		e.pop()
		if err != nil {
			return err
		}
	}
	e.sink.WriteTag(tagEnd)
	return nil
}

// encodeMap writes each key by inference and each value with the
// declaration found for a string key in scope.
func (e *encoder) encodeMap(m *Map, scope Schema) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	e.sink.WriteTag(tagMap)
	for i, ent := range m.Entries() {
		e.push(strconv.Itoa(i))
		err := e.encodeEntry(ent, scope)
		e.pop()
		if err != nil {
			return err
		}
	}
	e.sink.WriteTag(tagEnd)
	return nil
}

func (e *encoder) encodeEntry(ent MapEntry, scope Schema) error {
	var (
		f  Field
		ok bool
	)
	if s, isStr := ent.Key.(String); isStr {
		if err := e.encodeKey(string(s)); err != nil {
			return err
		}
		f, ok = scope.Lookup(string(s))
	} else if err := e.encodeValue(ent.Key, Field{}, false); err != nil {
		return err
	}
	return e.encodeValue(ent.Value, f, ok)
}

func (e *encoder) encodeString(s string) error {
	e.sink.WriteTag(tagString)
	if err := e.sink.WriteLength(len(s)); err != nil {
		return e.errorf(err, "string of %d bytes", len(s))
	}
	e.sink.WriteText(s)
	return nil
}

func (e *encoder) encodeBytes(b []byte) error {
	e.sink.WriteTag(tagBytes)
	if err := e.sink.WriteLength(len(b)); err != nil {
		return e.errorf(err, "blob of %d bytes", len(b))
	}
	e.sink.WriteRaw(b)
	return nil
}

func (e *encoder) encodeBool(b bool) {
	if b {
		e.sink.WriteTag(tagTrue)
	} else {
		e.sink.WriteTag(tagFalse)
	}
}

// intTiers lists the integer encodings from narrowest to widest.
var intTiers = [...]struct {
	pos, neg byte
	width    common.Width
}{
	{tagPosInt8, tagNegInt8, common.U8},
	{tagPosInt16, tagNegInt16, common.U16},
	{tagPosInt32, tagNegInt32, common.U32},
}

func magnitude(n int64) (mag uint64, neg bool) {
	if n < 0 {
		return uint64(-(n + 1)) + 1, true
	}
	return uint64(n), false
}

// encodeInt picks the narrowest tier that holds the magnitude and falls
// back to a double beyond 32 bits.
func (e *encoder) encodeInt(n int64) {
	mag, neg := magnitude(n)
	for _, t := range intTiers {
		if mag <= t.width.Max() {
			if neg {
				e.sink.WriteTag(t.neg)
			} else {
				e.sink.WriteTag(t.pos)
			}
			e.sink.WriteUint(mag, t.width)
			return
		}
	}
	e.sink.WriteTag(tagDouble)
	e.sink.WriteDouble(float64(n))
}

func declaredTier(t WireType) (pos, neg byte, w common.Width) {
	switch t {
	case WireU8:
		return tagPosInt8, tagNegInt8, common.U8
	case WireU16:
		return tagPosInt16, tagNegInt16, common.U16
	default:
		return tagPosInt32, tagNegInt32, common.U32
	}
}

// encodeDeclaredNumber writes v at exactly the declared width. Integral
// values keep the sign in the tag; anything else becomes a double.
func (e *encoder) encodeDeclaredNumber(v Value, t WireType) error {
	n, f, integral, err := e.numberOf(v)
	if err != nil {
		return err
	}
	pos, neg, w := declaredTier(t)
	var (
		mag   uint64
		isNeg bool
	)
	switch {
	case t == WireDouble || (!integral && !wholeFloat(f)):
		e.sink.WriteTag(tagDouble)
		e.sink.WriteDouble(f)
		return nil
	case !integral:
		// whole but outside int64, so it never fits a declared width
		if e.c.opts.WidthPolicy != WidthTruncate {
			return e.errorf(ErrWidthOverflow, "%g does not fit %s", f, t)
		}
		e.c.log.Warn("truncating value to declared width", "value", f, "width", t.String(), "path", strings.Join(e.path, "."))
		mag = uint64(math.Mod(math.Abs(f), 1<<64)) & w.Max()
		isNeg = f < 0
	default:
		mag, isNeg = magnitude(n)
		if mag > w.Max() {
			if e.c.opts.WidthPolicy != WidthTruncate {
				return e.errorf(ErrWidthOverflow, "%d does not fit %s", n, t)
			}
			e.c.log.Warn("truncating value to declared width", "value", n, "width", t.String(), "path", strings.Join(e.path, "."))
			mag &= w.Max()
		}
	}
	if isNeg {
		e.sink.WriteTag(neg)
	} else {
		e.sink.WriteTag(pos)
	}
	e.sink.WriteUint(mag, w)
	return nil
}

// numberOf coerces v to a number. integral reports whether n holds the
// exact value; f always holds it as a double.
func (e *encoder) numberOf(v Value) (n int64, f float64, integral bool, err error) {
	switch x := v.(type) {
	case Int:
		return int64(x), float64(x), true, nil
	case Float:
		f = float64(x)
	case Bool:
		if x {
			return 1, 1, true, nil
		}
		return 0, 0, true, nil
	case Date:
		return x.ms, float64(x.ms), true, nil
	case String:
		s := strings.TrimSpace(string(x))
		if i, perr := strconv.ParseInt(s, 10, 64); perr == nil {
			return i, float64(i), true, nil
		}
		pf, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return 0, 0, false, e.errorf(ErrCoerce, "string %q is not a number", s)
		}
		f = pf
	default:
		if v == nil {
			return 0, 0, false, e.errorf(ErrInvalidType, "nil for number")
		}
		return 0, 0, false, e.errorf(ErrCoerce, "%s to number", v.Kind())
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f), f, true, nil
	}
	return 0, f, false, nil
}

func wholeFloat(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0)
}

func (e *encoder) textOf(v Value) (string, error) {
	switch x := v.(type) {
	case String:
		return string(x), nil
	case Bytes:
		return string(x), nil
	case Int:
		return strconv.FormatInt(int64(x), 10), nil
	case Float:
		f := float64(x)
		if f == math.Trunc(f) && math.Abs(f) < 1e21 {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case Bool:
		return strconv.FormatBool(bool(x)), nil
	case Date:
		return x.String(), nil
	}
	if v == nil {
		return "", e.errorf(ErrInvalidType, "nil for string")
	}
	return "", e.errorf(ErrCoerce, "%s to string", v.Kind())
}

func (e *encoder) dateOf(v Value) (Date, error) {
	switch x := v.(type) {
	case Date:
		return x, nil
	case Int:
		return DateFromUnixMilli(int64(x)), nil
	case Float:
		return DateFromUnixMilli(int64(math.Floor(float64(x)))), nil
	case String:
		t, err := time.Parse(time.RFC3339Nano, string(x))
		if err != nil {
			return Date{}, e.errorf(ErrCoerce, "string %q is not an RFC 3339 date", string(x))
		}
		return NewDate(t), nil
	}
	if v == nil {
		return Date{}, e.errorf(ErrInvalidType, "nil for date")
	}
	return Date{}, e.errorf(ErrCoerce, "%s to date", v.Kind())
}

// truthy follows the usual dynamic-language rules: zero numbers, NaN and
// empty strings are false, everything else is true.
func truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Float:
		return x != 0 && !math.IsNaN(float64(x))
	case String:
		return x != ""
	}
	return true
}

// encodeDate writes whole seconds, plus the millisecond remainder when it
// is not zero.
func (e *encoder) encodeDate(d Date) error {
	sec := d.ms / 1000
	rem := d.ms % 1000
	if rem < 0 {
		sec--
		rem += 1000
	}
	if sec < 0 || sec > math.MaxUint32 {
		return e.errorf(ErrDateRange, "%s", d)
	}
	if rem != 0 {
		e.sink.WriteTag(tagDateMilli)
		e.sink.WriteUint(uint64(sec), common.U32)
		e.sink.WriteUint(uint64(rem), common.U16)
		return nil
	}
	e.sink.WriteTag(tagDateSecond)
	e.sink.WriteUint(uint64(sec), common.U32)
	return nil
}
