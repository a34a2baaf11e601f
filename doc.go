// Package tagwire implements a compact, self-describing binary encoding
// for dynamically typed values.
//
// Every value on the wire starts with a one-byte tag naming its kind and
// width; containers are closed by an end marker, so a decoder needs no
// schema. A Schema only steers the encoder: it can force a field to a
// fixed integer width, a double, a string, a bool, a date, a Set or a Map,
// and can describe nested records.
//
//	schema := tagwire.Schema{
//		"age":   tagwire.Primitive(tagwire.WireU32),
//		"posts": tagwire.Nested(tagwire.Schema{"id": tagwire.Primitive(tagwire.WireString)}),
//	}
//	c, _ := tagwire.NewCodec(schema, tagwire.Options{})
//	buf, _ := c.Encode(tagwire.NewObject().Set("age", tagwire.Int(30)))
//	v, _ := c.Decode(buf)
//
// Tags:
//
//	'+' '-'  u8 magnitude, positive / negative
//	'p' 'i'  u16 magnitude
//	'P' 'I'  u32 magnitude
//	'd'      float64
//	's' 'B'  length-prefixed string / blob
//	't' 'f'  true / false
//	'T'      u32 seconds since the epoch
//	'D'      u32 seconds, u16 milliseconds
//	'O' 'a'  record / array, closed by '!'
//	'S' 'M'  set / map, closed by '!'
//
// Lengths use one, two or four bytes, selected by the high bits of the
// first byte. All multi-byte numbers are big-endian.
package tagwire
