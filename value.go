package tagwire

import (
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindBytes
	KindDate
	KindArray
	KindSet
	KindMap
	KindObject
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInt:     "int",
	KindFloat:   "float",
	KindBool:    "bool",
	KindString:  "string",
	KindBytes:   "bytes",
	KindDate:    "date",
	KindArray:   "array",
	KindSet:     "set",
	KindMap:     "map",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Value is the closed set of things the codec can carry. The concrete
// types are Int, Float, Bool, String, Bytes, Date, Array, *Set, *Map and
// *Object; no other package can add one.
type Value interface {
	Kind() Kind
	isValue()
}

// Int is a signed integer. On the wire the sign lives in the tag and the
// magnitude is limited to 32 bits.
type Int int64

// Float is an IEEE-754 double.
type Float float64

// Bool is a boolean.
type Bool bool

// String is a text value treated as raw bytes; no UTF-8 validation happens
// in either direction.
type String string

// Bytes is an opaque blob.
type Bytes []byte

// Date is an instant with millisecond precision.
type Date struct {
	ms int64
}

// Array is an ordered sequence.
type Array []Value

func (Int) Kind() Kind     { return KindInt }
func (Float) Kind() Kind   { return KindFloat }
func (Bool) Kind() Kind    { return KindBool }
func (String) Kind() Kind  { return KindString }
func (Bytes) Kind() Kind   { return KindBytes }
func (Date) Kind() Kind    { return KindDate }
func (Array) Kind() Kind   { return KindArray }
func (*Set) Kind() Kind    { return KindSet }
func (*Map) Kind() Kind    { return KindMap }
func (*Object) Kind() Kind { return KindObject }

func (Int) isValue()     {}
func (Float) isValue()   {}
func (Bool) isValue()    {}
func (String) isValue()  {}
func (Bytes) isValue()   {}
func (Date) isValue()    {}
func (Array) isValue()   {}
func (*Set) isValue()    {}
func (*Map) isValue()    {}
func (*Object) isValue() {}

// NewDate truncates t to millisecond precision.
func NewDate(t time.Time) Date {
	return Date{ms: t.UnixMilli()}
}

// DateFromUnixMilli builds a Date from milliseconds since the Unix epoch.
func DateFromUnixMilli(ms int64) Date {
	return Date{ms: ms}
}

// UnixMilli returns the instant as milliseconds since the Unix epoch.
func (d Date) UnixMilli() int64 { return d.ms }

// Time returns the instant in UTC.
func (d Date) Time() time.Time { return time.UnixMilli(d.ms).UTC() }

func (d Date) String() string { return d.Time().Format("2006-01-02T15:04:05.000Z07:00") }

// Object is a record keyed by field name. Iteration follows insertion
// order; setting an existing key keeps its position.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Set stores v under key and returns o for chaining.
func (o *Object) Set(key string, v Value) *Object {
	if o.fields == nil {
		o.fields = make(map[string]Value)
	}
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Delete removes key.
func (o *Object) Delete(key string) {
	if _, ok := o.fields[key]; !ok {
		return
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Range calls fn for each field in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// Set is an unordered collection of unique members. Membership is
// structural: two members are the same when Equal reports true. Members
// must not be modified after they are added.
type Set struct {
	members []Value
	index   hashIndex
}

// NewSet returns a Set holding the distinct members of vs.
func NewSet(vs ...Value) *Set {
	s := &Set{}
	for _, v := range vs {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v Value) bool {
	if s.find(v) >= 0 {
		return false
	}
	s.index.add(hashValue(v), len(s.members))
	s.members = append(s.members, v)
	return true
}

// Has reports whether v is a member.
func (s *Set) Has(v Value) bool { return s.find(v) >= 0 }

func (s *Set) find(v Value) int {
	if s == nil {
		return -1
	}
	for _, i := range s.index.lookup(hashValue(v)) {
		if Equal(s.members[i], v) {
			return i
		}
	}
	return -1
}

// Len returns the number of members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Members returns the members in insertion order.
func (s *Set) Members() []Value {
	if s == nil {
		return nil
	}
	return append([]Value(nil), s.members...)
}

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map associates arbitrary Value keys with values. Keys compare
// structurally.
type Map struct {
	entries []MapEntry
	index   hashIndex
}

// NewMap returns an empty Map.
func NewMap() *Map { return &Map{} }

// Set stores v under k and returns m for chaining.
func (m *Map) Set(k, v Value) *Map {
	if i := m.find(k); i >= 0 {
		m.entries[i].Value = v
		return m
	}
	m.index.add(hashValue(k), len(m.entries))
	m.entries = append(m.entries, MapEntry{Key: k, Value: v})
	return m
}

// Get returns the value stored under k.
func (m *Map) Get(k Value) (Value, bool) {
	i := m.find(k)
	if i < 0 {
		return nil, false
	}
	return m.entries[i].Value, true
}

func (m *Map) find(k Value) int {
	if m == nil {
		return -1
	}
	for _, i := range m.index.lookup(hashValue(k)) {
		if Equal(m.entries[i].Key, k) {
			return i
		}
	}
	return -1
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries in insertion order.
func (m *Map) Entries() []MapEntry {
	if m == nil {
		return nil
	}
	return append([]MapEntry(nil), m.entries...)
}

type hashIndex map[uint64][]int

func (h *hashIndex) add(sum uint64, pos int) {
	if *h == nil {
		*h = make(hashIndex)
	}
	(*h)[sum] = append((*h)[sum], pos)
}

func (h hashIndex) lookup(sum uint64) []int {
	return h[sum]
}
