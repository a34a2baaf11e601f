package tagwire

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name     string    `tagwire:"name"`
	Age      uint8     `tagwire:"age"`
	Joined   time.Time `tagwire:"joined"`
	Avatar   []byte    `tagwire:"avatar,omitempty"`
	Tags     []string  `tagwire:"tags"`
	Password string    `tagwire:"-"`
	Score    float64
	hidden   int
}

func TestFromGoStruct(t *testing.T) {
	joined := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	v, err := FromGo(&profile{
		Name:     "ada",
		Age:      36,
		Joined:   joined,
		Tags:     []string{"admin"},
		Password: "secret",
		Score:    1.5,
		hidden:   1,
	})
	require.NoError(t, err)

	o := v.(*Object)
	assert.Equal(t, []string{"name", "age", "joined", "tags", "Score"}, o.Keys())
	age, _ := o.Get("age")
	assert.Equal(t, Int(36), age)
	j, _ := o.Get("joined")
	assert.Equal(t, NewDate(joined), j)
	tags, _ := o.Get("tags")
	assert.True(t, Equal(Array{String("admin")}, tags))
}

func TestFromGoMaps(t *testing.T) {
	v, err := FromGo(map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.(*Object).Keys())

	v, err = FromGo(map[int]string{1: "one"})
	require.NoError(t, err)
	m := v.(*Map)
	one, ok := m.Get(Int(1))
	require.True(t, ok)
	assert.Equal(t, String("one"), one)
}

func TestFromGoScalars(t *testing.T) {
	cases := []struct {
		in   any
		want Value
	}{
		{int8(-3), Int(-3)},
		{uint32(7), Int(7)},
		{uint64(math.MaxUint64), Float(math.MaxUint64)},
		{float32(0.5), Float(0.5)},
		{true, Bool(true)},
		{"s", String("s")},
		{[]byte{1}, Bytes{1}},
		{[2]byte{1, 2}, Bytes{1, 2}},
		{String("already"), String("already")},
		{[]any{1, "x"}, Array{Int(1), String("x")}},
	}
	for _, tc := range cases {
		got, err := FromGo(tc.in)
		require.NoError(t, err, "%#v", tc.in)
		assert.True(t, Equal(tc.want, got), "%#v", tc.in)
	}
}

func TestFromGoRejects(t *testing.T) {
	var p *profile
	for _, in := range []any{nil, p, make(chan int), func() {}, []any{nil}} {
		_, err := FromGo(in)
		require.ErrorIs(t, err, ErrInvalidType, "%#v", in)
	}
}

func TestToGo(t *testing.T) {
	v := NewObject().
		Set("n", Int(1)).
		Set("tags", NewSet(String("a"))).
		Set("byName", NewMap().Set(String("x"), Float(2))).
		Set("byID", NewMap().Set(Int(1), Bool(true))).
		Set("when", DateFromUnixMilli(1000))
	got := ToGo(v).(map[string]any)

	assert.Equal(t, int64(1), got["n"])
	assert.Equal(t, []any{"a"}, got["tags"])
	assert.Equal(t, map[string]any{"x": 2.0}, got["byName"])
	assert.Equal(t, []MapEntryGo{{Key: int64(1), Value: true}}, got["byID"])
	assert.Equal(t, time.UnixMilli(1000).UTC(), got["when"])
	assert.Nil(t, ToGo(nil))
}

func TestMarshalUnmarshal(t *testing.T) {
	c := newCodec(t, Schema{"age": Primitive(WireU32)}, Options{})
	data, err := c.Marshal(map[string]any{"age": 30, "name": "ada"})
	require.NoError(t, err)

	out, err := c.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"age": int64(30), "name": "ada"}, out)

	same, err := c.Marshal(NewObject().Set("age", Int(30)).Set("name", String("ada")))
	require.NoError(t, err)
	assert.Equal(t, data, same)

	_, err = c.Marshal(make(chan int))
	require.ErrorIs(t, err, ErrInvalidType)
}
