package tagwire

import (
	"fmt"

	"github.com/rawbytedev/tagwire/internal/common"
)

type decoder struct {
	c     *Codec
	cur   *common.Cursor
	depth int
	// trace, when set, sees every tag as it is read. Scalars carry their
	// decoded value; container open and close markers carry nil.
	trace func(offset, depth int, tag byte, v Value)
}

// decodeValue reads one tag and the payload it announces. The stream is
// self-describing; the schema is never consulted.
func (d *decoder) decodeValue() (Value, error) {
	start := d.cur.Offset()
	code, err := d.cur.ReadUint(common.U8)
	if err != nil {
		return nil, err
	}
	tag := byte(code)
	if d.trace != nil && isContainerTag(tag) {
		d.trace(start, d.depth, tag, nil)
	}
	v, err := d.dispatch(start, tag)
	if err == nil && d.trace != nil && !isContainerTag(tag) {
		d.trace(start, d.depth, tag, v)
	}
	return v, err
}

func isContainerTag(tag byte) bool {
	return tag == tagObject || tag == tagArray || tag == tagSet || tag == tagMap
}

func (d *decoder) dispatch(start int, tag byte) (Value, error) {
	switch tag {
	case tagPosInt8:
		return d.readInt(common.U8, false)
	case tagNegInt8:
		return d.readInt(common.U8, true)
	case tagPosInt16:
		return d.readInt(common.U16, false)
	case tagNegInt16:
		return d.readInt(common.U16, true)
	case tagPosInt32:
		return d.readInt(common.U32, false)
	case tagNegInt32:
		return d.readInt(common.U32, true)
	case tagDouble:
		f, err := d.cur.ReadDouble()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case tagString:
		n, err := d.cur.ReadLength()
		if err != nil {
			return nil, err
		}
		s, err := d.cur.ReadText(n)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case tagBytes:
		n, err := d.cur.ReadLength()
		if err != nil {
			return nil, err
		}
		b, err := d.cur.ReadRaw(n)
		if err != nil {
			return nil, err
		}
		return Bytes(b), nil
	case tagTrue:
		return Bool(true), nil
	case tagFalse:
		return Bool(false), nil
	case tagDateSecond:
		sec, err := d.cur.ReadUint(common.U32)
		if err != nil {
			return nil, err
		}
		return DateFromUnixMilli(int64(sec) * 1000), nil
	case tagDateMilli:
		sec, err := d.cur.ReadUint(common.U32)
		if err != nil {
			return nil, err
		}
		ms, err := d.cur.ReadUint(common.U16)
		if err != nil {
			return nil, err
		}
		return DateFromUnixMilli(int64(sec)*1000 + int64(ms)), nil
	case tagObject:
		return d.container(start, d.readObject)
	case tagArray:
		return d.container(start, d.readArray)
	case tagSet:
		return d.container(start, d.readSet)
	case tagMap:
		return d.container(start, d.readMap)
	}
	return nil, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnknownTag, tag, start)
}

func (d *decoder) readInt(w common.Width, neg bool) (Value, error) {
	mag, err := d.cur.ReadUint(w)
	if err != nil {
		return nil, err
	}
	if neg {
		return Int(-int64(mag)), nil
	}
	return Int(mag), nil
}

// container guards the nesting depth around a container body.
func (d *decoder) container(start int, body func() (Value, error)) (Value, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.c.opts.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d at offset %d", ErrMaxDepth, d.depth, start)
	}
	return body()
}

// more reports whether another element precedes the end marker. When it
// does not, the end marker is consumed.
func (d *decoder) more() (bool, error) {
	b, err := d.cur.Peek()
	if err != nil {
		return false, err
	}
	if b == tagEnd {
		if d.trace != nil {
			d.trace(d.cur.Offset(), d.depth-1, tagEnd, nil)
		}
		d.cur.Skip()
		return false, nil
	}
	return true, nil
}

func (d *decoder) readObject() (Value, error) {
	o := NewObject()
	for {
		ok, err := d.more()
		if err != nil || !ok {
			return o, err
		}
		at := d.cur.Offset()
		k, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		key, isStr := k.(String)
		if !isStr {
			return nil, fmt.Errorf("%w: %s at offset %d", ErrKeyNotString, k.Kind(), at)
		}
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		o.Set(string(key), v)
	}
}

func (d *decoder) readArray() (Value, error) {
	a := Array{}
	for {
		ok, err := d.more()
		if err != nil || !ok {
			return a, err
		}
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		a = append(a, v)
	}
}

func (d *decoder) readSet() (Value, error) {
	s := NewSet()
	for {
		ok, err := d.more()
		if err != nil || !ok {
			return s, err
		}
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		s.Add(v)
	}
}

func (d *decoder) readMap() (Value, error) {
	m := NewMap()
	for {
		ok, err := d.more()
		if err != nil || !ok {
			return m, err
		}
		k, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
}
