package tagwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWireType(t *testing.T) {
	for _, name := range []string{"u8", "u16", "u32", "double", "string", "bool", "date", "Set", "Map"} {
		wt, err := ParseWireType(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, wt.String())
	}
	wt, err := ParseWireType("boolean")
	require.NoError(t, err)
	assert.Equal(t, WireBool, wt)

	_, err = ParseWireType("int64")
	require.ErrorIs(t, err, ErrSchema)
	assert.Equal(t, "WireType(42)", WireType(42).String())
	assert.True(t, WireDouble.Numeric())
	assert.False(t, WireString.Numeric())
}

func TestSchemaString(t *testing.T) {
	s := Schema{
		"posts": Nested(Schema{"id": Primitive(WireString), "at": Primitive(WireDate)}),
		"age":   Primitive(WireU32),
	}
	assert.Equal(t, "{age:u32,posts:{at:date,id:string}}", s.String())
	assert.Equal(t, "{}", Schema(nil).String())
}

func TestSchemaFingerprint(t *testing.T) {
	a := Schema{"a": Primitive(WireU8), "b": Nested(nil)}
	b := Schema{"b": Nested(Schema{}), "a": Primitive(WireU8)}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), a.Clone().Fingerprint())

	b["a"] = Primitive(WireU16)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestSchemaValidate(t *testing.T) {
	require.NoError(t, Schema(nil).Validate())
	require.NoError(t, Schema{"x": Nested(Schema{"y": Primitive(WireMap)})}.Validate())

	err := Schema{"x": Nested(Schema{"y": {}})}.Validate()
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), `in "x"`)

	err = Schema{"x": Primitive(WireType(99))}.Validate()
	require.ErrorIs(t, err, ErrSchema)
}

func TestSchemaClone(t *testing.T) {
	inner := Schema{"id": Primitive(WireU8)}
	s := Schema{"posts": Nested(inner)}
	c := s.Clone()
	inner["id"] = Primitive(WireString)

	f, ok := c.Lookup("posts")
	require.True(t, ok)
	require.True(t, f.IsNested())
	id, _ := f.Schema().Lookup("id")
	assert.Equal(t, WireU8, id.Type())

	_, ok = Schema(nil).Lookup("x")
	assert.False(t, ok)
}
