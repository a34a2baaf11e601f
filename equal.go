package tagwire

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether a and b hold the same value. Floats compare bit
// for bit, dates by millisecond, sets and maps by membership and objects
// by field set regardless of insertion order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Int:
		return x == b.(Int)
	case Float:
		return math.Float64bits(float64(x)) == math.Float64bits(float64(b.(Float)))
	case Bool:
		return x == b.(Bool)
	case String:
		return x == b.(String)
	case Bytes:
		return string(x) == string(b.(Bytes))
	case Date:
		return x.ms == b.(Date).ms
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Set:
		y := b.(*Set)
		if x.Len() != y.Len() {
			return false
		}
		if x.Len() == 0 {
			return true
		}
		for _, m := range x.members {
			if !y.Has(m) {
				return false
			}
		}
		return true
	case *Map:
		y := b.(*Map)
		if x.Len() != y.Len() {
			return false
		}
		if x.Len() == 0 {
			return true
		}
		for _, e := range x.entries {
			v, ok := y.Get(e.Key)
			if !ok || !Equal(e.Value, v) {
				return false
			}
		}
		return true
	case *Object:
		y := b.(*Object)
		if x.Len() != y.Len() {
			return false
		}
		if x.Len() == 0 {
			return true
		}
		for _, k := range x.keys {
			v, ok := y.Get(k)
			if !ok || !Equal(x.fields[k], v) {
				return false
			}
		}
		return true
	}
	return false
}

// hashValue is consistent with Equal: equal values hash equally. Unordered
// containers fold their members with addition so iteration order does not
// matter.
func hashValue(v Value) uint64 {
	if v == nil {
		return 0
	}
	var scratch [9]byte
	scratch[0] = byte(v.Kind())
	word := func(u uint64) uint64 {
		binary.LittleEndian.PutUint64(scratch[1:], u)
		return xxhash.Sum64(scratch[:])
	}
	switch x := v.(type) {
	case Int:
		return word(uint64(x))
	case Float:
		return word(math.Float64bits(float64(x)))
	case Bool:
		if x {
			return word(1)
		}
		return word(0)
	case String:
		return xxhash.Sum64String("s" + string(x))
	case Bytes:
		return xxhash.Sum64String("b" + string(x))
	case Date:
		return word(uint64(x.ms))
	case Array:
		d := xxhash.New()
		d.Write([]byte{byte(KindArray)})
		for _, e := range x {
			binary.LittleEndian.PutUint64(scratch[1:], hashValue(e))
			d.Write(scratch[1:])
		}
		return d.Sum64()
	case *Set:
		var sum uint64
		if x == nil {
			return word(sum)
		}
		for _, m := range x.members {
			sum += hashValue(m)
		}
		return word(sum)
	case *Map:
		var sum uint64
		if x == nil {
			return word(sum)
		}
		for _, e := range x.entries {
			sum += pairHash(hashValue(e.Key), hashValue(e.Value))
		}
		return word(sum)
	case *Object:
		var sum uint64
		if x == nil {
			return word(sum)
		}
		for _, k := range x.keys {
			sum += pairHash(xxhash.Sum64String(k), hashValue(x.fields[k]))
		}
		return word(sum)
	}
	return 0
}

func pairHash(k, v uint64) uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], k)
	binary.LittleEndian.PutUint64(b[8:], v)
	return xxhash.Sum64(b[:])
}
