package tagwire

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// WireType is a representation a schema can force for a field.
type WireType uint8

const (
	WireU8 WireType = iota + 1
	WireU16
	WireU32
	WireDouble
	WireString
	WireBool
	WireDate
	WireSet
	WireMap
)

var wireNames = map[WireType]string{
	WireU8:     "u8",
	WireU16:    "u16",
	WireU32:    "u32",
	WireDouble: "double",
	WireString: "string",
	WireBool:   "bool",
	WireDate:   "date",
	WireSet:    "Set",
	WireMap:    "Map",
}

// ParseWireType maps a schema type name to its WireType. "boolean" is
// accepted as an alias of "bool".
func ParseWireType(name string) (WireType, error) {
	if name == "boolean" {
		return WireBool, nil
	}
	for t, n := range wireNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown wire type %q", ErrSchema, name)
}

func (t WireType) String() string {
	if n, ok := wireNames[t]; ok {
		return n
	}
	return fmt.Sprintf("WireType(%d)", uint8(t))
}

// Numeric reports whether t forces a number encoding.
func (t WireType) Numeric() bool {
	return t >= WireU8 && t <= WireDouble
}

// Field is one schema entry: either a primitive wire type or a nested
// schema describing an object (or the objects of an array).
type Field struct {
	typ    WireType
	nested Schema
}

// Primitive declares a field with a forced wire type.
func Primitive(t WireType) Field { return Field{typ: t} }

// Nested declares a field holding an object, or an array of objects,
// whose own fields follow s.
func Nested(s Schema) Field {
	if s == nil {
		s = Schema{}
	}
	return Field{nested: s}
}

// IsNested reports whether f is a nested schema.
func (f Field) IsNested() bool { return f.nested != nil }

// Type returns the primitive wire type; zero for nested fields.
func (f Field) Type() WireType { return f.typ }

// Schema returns the nested schema; nil for primitive fields.
func (f Field) Schema() Schema { return f.nested }

func (f Field) valid() bool {
	if f.nested != nil {
		return f.typ == 0
	}
	_, ok := wireNames[f.typ]
	return ok
}

// Schema maps field names to their declared representation. Fields that
// are absent fall back to type inference.
type Schema map[string]Field

// Lookup returns the declaration for key.
func (s Schema) Lookup(key string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	f, ok := s[key]
	return f, ok
}

// Validate reports the first malformed entry, descending into nested
// schemas.
func (s Schema) Validate() error {
	for _, k := range s.sortedKeys() {
		f := s[k]
		if !f.valid() {
			return fmt.Errorf("%w: field %q has no valid type", ErrSchema, k)
		}
		if f.IsNested() {
			if err := f.nested.Validate(); err != nil {
				return fmt.Errorf("in %q: %w", k, err)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for k, f := range s {
		if f.IsNested() {
			f = Nested(f.nested.Clone())
		}
		out[k] = f
	}
	return out
}

// String renders s canonically with keys sorted, e.g.
// {age:u32,posts:{id:string}}.
func (s Schema) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s Schema) write(b *strings.Builder) {
	b.WriteByte('{')
	for i, k := range s.sortedKeys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		if f := s[k]; f.IsNested() {
			f.nested.write(b)
		} else {
			b.WriteString(f.typ.String())
		}
	}
	b.WriteByte('}')
}

// Fingerprint identifies s by the blake3 digest of its canonical form.
// Schemas that differ only in map iteration order share a fingerprint.
func (s Schema) Fingerprint() uint64 {
	sum := blake3.Sum256([]byte(s.String()))
	return binary.BigEndian.Uint64(sum[:8])
}

func (s Schema) sortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
