package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rabbitSpecs() map[string]FieldSpec {
	return map[string]FieldSpec{
		"host":     {Default: "localhost", Mode: ModeWrite},
		"port":     {Mode: ModeReadOnly, Env: "RABBITMQ_PORT", Pattern: `^[0-9]*$`},
		"user":     {Mode: ModeWrite, Env: "RABBITMQ_USER", Pattern: `^[a-zA-Z0-9_.-]*$`},
		"password": {Default: "guest", Mode: ModeImmutable, Env: "RABBITMQ_PASSWORD"},
		"queues":   {Mode: ModeAppend},
	}
}

func TestNewAppliesEnvironment(t *testing.T) {
	env := Environ([]string{"RABBITMQ_PORT=1111", "RABBITMQ_USER=user", "RABBITMQ_PASSWORD=password", "BROKEN"})
	c, err := New(rabbitSpecs(), env)
	require.NoError(t, err)

	host, err := c.Get("host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)

	port, _ := c.Get("port")
	assert.Equal(t, "1111", port)

	// immutable fields ignore the environment
	pw, _ := c.Get("password")
	assert.Equal(t, "guest", pw)
}

func TestModes(t *testing.T) {
	c, err := New(rabbitSpecs(), nil)
	require.NoError(t, err)

	require.NoError(t, c.Set("user", "new-user"))
	user, _ := c.Get("user")
	assert.Equal(t, "new-user", user)

	require.ErrorIs(t, c.Set("port", "1"), ErrReadOnly)
	require.ErrorIs(t, c.Append("port", "1"), ErrReadOnly)
	require.ErrorIs(t, c.Set("password", "pass"), ErrImmutable)
	require.ErrorIs(t, c.Set("queues", "a"), ErrAppendOnly)

	require.NoError(t, c.Append("queues", "a"))
	require.NoError(t, c.Append("queues", "b"))
	qs, err := c.Values("queues")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, qs)

	_, err = c.Get("vhost")
	require.ErrorIs(t, err, ErrUnknownField)
	require.ErrorIs(t, c.Set("vhost", "/"), ErrUnknownField)

	m, err := c.Mode("queues")
	require.NoError(t, err)
	assert.Equal(t, "append", m.String())
	assert.Equal(t, []string{"host", "password", "port", "queues", "user"}, c.Fields())
}

func TestValidation(t *testing.T) {
	c, err := New(rabbitSpecs(), nil)
	require.NoError(t, err)
	require.ErrorIs(t, c.Set("user", "bad user"), ErrValidation)

	_, err = New(rabbitSpecs(), map[string]string{"RABBITMQ_PORT": "abc"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = New(map[string]FieldSpec{"x": {Pattern: "("}}, nil)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: broker\nport: \"5672\"\nqueues: [a, b]\npassword: guest\n"), 0600))

	c, err := New(rabbitSpecs(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Load(path))

	host, _ := c.Get("host")
	assert.Equal(t, "broker", host)
	port, _ := c.Get("port")
	assert.Equal(t, "5672", port)
	qs, _ := c.Values("queues")
	assert.Equal(t, []string{"a", "b"}, qs)

	// a second load cannot change a read-only field again
	require.ErrorIs(t, c.Load(path), ErrReadOnly)
}

func TestLoadPrefersEnvironmentForReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"5672\"\n"), 0600))

	c, err := New(rabbitSpecs(), map[string]string{"RABBITMQ_PORT": "1111"})
	require.NoError(t, err)
	require.NoError(t, c.Load(path))
	port, _ := c.Get("port")
	assert.Equal(t, "1111", port)
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]error{
		"password: other\n": ErrImmutable,
		"vhost: /\n":        ErrUnknownField,
		"user: \"a b\"\n":   ErrValidation,
	}
	for doc, want := range cases {
		path := filepath.Join(dir, "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0600))
		c, err := New(rabbitSpecs(), nil)
		require.NoError(t, err)
		require.ErrorIs(t, c.Load(path), want, doc)
	}

	c, err := New(rabbitSpecs(), nil)
	require.NoError(t, err)
	require.Error(t, c.Load(filepath.Join(dir, "missing.yaml")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c, err := New(rabbitSpecs(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Set("host", "mq"))
	require.NoError(t, c.Append("queues", "jobs"))
	require.NoError(t, c.Append("queues", "mail"))

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, c.Save(path))

	d, err := New(rabbitSpecs(), nil)
	require.NoError(t, err)
	require.NoError(t, d.Load(path))
	host, _ := d.Get("host")
	assert.Equal(t, "mq", host)
	qs, _ := d.Values("queues")
	assert.Equal(t, []string{"jobs", "mail"}, qs)
}
