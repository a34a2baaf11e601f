package schemafile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/tagwire"
)

const profileSchema = `
age: u32
admin: boolean
joined: date
posts:
  id: string
  tags: Set
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(profileSchema))
	require.NoError(t, err)
	assert.Equal(t, "{admin:bool,age:u32,joined:date,posts:{id:string,tags:Set}}", s.String())
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = Parse([]byte("empty: {}\n"))
	require.NoError(t, err)
	f, ok := s.Lookup("empty")
	require.True(t, ok)
	assert.True(t, f.IsNested())
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"not a mapping", "- u8\n", ErrFormat},
		{"list field", "tags: [u8]\n", ErrFormat},
		{"unknown type", "age: int64\n", tagwire.ErrSchema},
		{"duplicate", "a: u8\na: u16\n", ErrFormat},
		{"bad yaml", "a: [\n", ErrFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	s := tagwire.Schema{
		"age":   tagwire.Primitive(tagwire.WireU8),
		"attrs": tagwire.Primitive(tagwire.WireMap),
		"posts": tagwire.Nested(tagwire.Schema{"at": tagwire.Primitive(tagwire.WireDate)}),
	}
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, Save(path, s))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Fingerprint(), got.Fingerprint())

	data, err := Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, "age: u8\nattrs: Map\nposts:\n    at: date\n", string(data))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
