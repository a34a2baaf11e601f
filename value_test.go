package tagwire

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectOrder(t *testing.T) {
	o := NewObject().Set("b", Int(1)).Set("a", Int(2)).Set("b", Int(3))
	assert.Equal(t, []string{"b", "a"}, o.Keys())
	v, ok := o.Get("b")
	require.True(t, ok)
	assert.Equal(t, Int(3), v)

	o.Delete("b")
	assert.Equal(t, []string{"a"}, o.Keys())
	assert.Equal(t, 1, o.Len())
	o.Delete("missing")
	assert.Equal(t, 1, o.Len())

	var zero Object
	zero.Set("x", Bool(true))
	assert.Equal(t, 1, zero.Len())
}

func TestSetMembershipIsStructural(t *testing.T) {
	s := NewSet(Array{Int(1)}, Array{Int(1)}, NewObject().Set("k", String("v")))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(Array{Int(1)}))
	assert.True(t, s.Has(NewObject().Set("k", String("v"))))
	assert.False(t, s.Has(Array{Int(2)}))
	assert.False(t, s.Add(Array{Int(1)}))
	assert.True(t, s.Add(Float(1)))
	// Int and Float of the same magnitude are distinct members
	assert.True(t, s.Has(Float(1)))
	assert.False(t, s.Has(Int(1)))
}

func TestMapKeysAreStructural(t *testing.T) {
	m := NewMap().
		Set(Array{String("a")}, Int(1)).
		Set(NewSet(Int(1), Int(2)), Int(2))
	m.Set(Array{String("a")}, Int(10))
	assert.Equal(t, 2, m.Len())

	v, ok := m.Get(Array{String("a")})
	require.True(t, ok)
	assert.Equal(t, Int(10), v)

	v, ok = m.Get(NewSet(Int(2), Int(1)))
	require.True(t, ok)
	assert.Equal(t, Int(2), v)

	_, ok = m.Get(String("a"))
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	a := NewObject().Set("x", Int(1)).Set("y", Array{Bool(true)})
	b := NewObject().Set("y", Array{Bool(true)}).Set("x", Int(1))
	assert.True(t, Equal(a, b))
	assert.Equal(t, hashValue(a), hashValue(b))

	b.Set("x", Int(2))
	assert.False(t, Equal(a, b))

	nan := Float(math.NaN())
	assert.True(t, Equal(nan, nan))
	assert.False(t, Equal(Float(0), Float(math.Copysign(0, -1))))
	assert.False(t, Equal(Int(1), Float(1)))
	assert.False(t, Equal(Array{Int(1)}, Array{Int(1), Int(1)}))
	assert.True(t, Equal(Bytes(nil), Bytes{}))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(Int(0), nil))

	var ns *Set
	assert.True(t, Equal(ns, NewSet()))
	assert.Equal(t, hashValue(ns), hashValue(NewSet()))
}

func TestHashConsistentWithEqual(t *testing.T) {
	pairs := [][2]Value{
		{NewSet(Int(1), Int(2)), NewSet(Int(2), Int(1))},
		{NewMap().Set(Int(1), Int(2)).Set(Int(3), Int(4)), NewMap().Set(Int(3), Int(4)).Set(Int(1), Int(2))},
		{DateFromUnixMilli(5), NewDate(time.UnixMilli(5))},
		{String("x"), String("x")},
	}
	for _, p := range pairs {
		require.True(t, Equal(p[0], p[1]))
		assert.Equal(t, hashValue(p[0]), hashValue(p[1]))
	}
	assert.NotEqual(t, hashValue(String("x")), hashValue(Bytes("x")))
}

func TestDate(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)
	d := NewDate(ts)
	assert.Equal(t, ts.UnixMilli(), d.UnixMilli())
	assert.Equal(t, "2024-03-01T12:30:00.123Z", d.String())
	assert.True(t, d.Time().Equal(ts.Truncate(time.Millisecond)))
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "object", NewObject().Kind().String())
	assert.Equal(t, "date", Date{}.Kind().String())
	assert.Equal(t, "invalid", Kind(200).String())
}
