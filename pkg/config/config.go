// Package config holds explicit, validated configuration values with
// per-field access modes. Nothing is read from process-wide state: the
// environment is passed in by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownField = errors.New("unknown config field")
	ErrReadOnly     = errors.New("config field is read-only")
	ErrImmutable    = errors.New("config field is immutable")
	ErrAppendOnly   = errors.New("config field is append-only")
	ErrValidation   = errors.New("config value failed validation")
)

// Mode controls how a field may change after its default is applied.
type Mode uint8

const (
	// ModeWrite fields accept Set and Append.
	ModeWrite Mode = iota
	// ModeAppend fields accept Append only; earlier values are kept.
	ModeAppend
	// ModeReadOnly fields take their value from the default, a config file
	// or the environment while loading, and refuse every later change.
	ModeReadOnly
	// ModeImmutable fields always hold their default.
	ModeImmutable
)

var modeNames = [...]string{"write", "append", "read-only", "immutable"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// FieldSpec declares one recognized field.
type FieldSpec struct {
	Default string
	Mode    Mode
	// Pattern, when set, must match every value the field takes.
	Pattern string
	// Env names the environment variable that overrides Default.
	Env string
}

type field struct {
	spec    FieldSpec
	re      *regexp.Regexp
	values  []string
	loaded  bool
	fromEnv bool
}

// Config is a set of declared fields and their current values. It is not
// safe for concurrent mutation.
type Config struct {
	fields map[string]*field
}

// New declares fields, applies defaults and then environment overrides.
// env is usually Environ(os.Environ()); nil means no overrides.
func New(specs map[string]FieldSpec, env map[string]string) (*Config, error) {
	c := &Config{fields: make(map[string]*field, len(specs))}
	for _, name := range sortedNames(specs) {
		spec := specs[name]
		f := &field{spec: spec}
		if spec.Pattern != "" {
			re, err := regexp.Compile(spec.Pattern)
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid pattern: %w", name, err)
			}
			f.re = re
		}
		val := spec.Default
		if ev, ok := env[spec.Env]; ok && spec.Env != "" && spec.Mode != ModeImmutable {
			val = ev
			f.fromEnv = true
		}
		if err := f.check(name, val); err != nil {
			return nil, err
		}
		f.values = []string{val}
		c.fields[name] = f
	}
	return c, nil
}

func (f *field) check(name, v string) error {
	if f.re != nil && !f.re.MatchString(v) {
		return fmt.Errorf("%w: %s=%q does not match %s", ErrValidation, name, v, f.spec.Pattern)
	}
	return nil
}

func (c *Config) lookup(name string) (*field, error) {
	f, ok := c.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f, nil
}

// Get returns the latest value of name.
func (c *Config) Get(name string) (string, error) {
	f, err := c.lookup(name)
	if err != nil {
		return "", err
	}
	return f.values[len(f.values)-1], nil
}

// Values returns every value of name in the order they were added. Fields
// that were never appended to hold a single value.
func (c *Config) Values(name string) ([]string, error) {
	f, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), f.values...), nil
}

// Set replaces the value of a ModeWrite field.
func (c *Config) Set(name, value string) error {
	f, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := f.writable(name, false); err != nil {
		return err
	}
	if err := f.check(name, value); err != nil {
		return err
	}
	f.values = []string{value}
	return nil
}

// Append adds a value to a ModeWrite or ModeAppend field. An empty default
// is replaced by the first appended value rather than kept beside it.
func (c *Config) Append(name, value string) error {
	f, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := f.writable(name, true); err != nil {
		return err
	}
	if err := f.check(name, value); err != nil {
		return err
	}
	if len(f.values) == 1 && f.values[0] == "" {
		f.values = f.values[:0]
	}
	f.values = append(f.values, value)
	return nil
}

func (f *field) writable(name string, appending bool) error {
	switch f.spec.Mode {
	case ModeImmutable:
		return fmt.Errorf("%w: %s", ErrImmutable, name)
	case ModeReadOnly:
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	case ModeAppend:
		if !appending {
			return fmt.Errorf("%w: %s", ErrAppendOnly, name)
		}
	}
	return nil
}

// Fields lists the declared field names, sorted.
func (c *Config) Fields() []string {
	return sortedNames(c.fields)
}

// Mode returns the access mode of name.
func (c *Config) Mode(name string) (Mode, error) {
	f, err := c.lookup(name)
	if err != nil {
		return 0, err
	}
	return f.spec.Mode, nil
}

// Load applies a YAML file of field values. A field may hold a string or a
// list of strings; lists are appended. The environment takes precedence
// over the file for read-only fields, which otherwise accept one value
// here. Immutable fields refuse any value that differs from their default.
func (c *Config) Load(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	for _, name := range sortedNames(doc) {
		node := doc[name]
		var vals []string
		switch node.Kind {
		case yaml.ScalarNode:
			vals = []string{node.Value}
		case yaml.SequenceNode:
			if err := node.Decode(&vals); err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
		default:
			return fmt.Errorf("field %s: expected a string or a list", name)
		}
		if err := c.apply(name, vals); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) apply(name string, vals []string) error {
	f, err := c.lookup(name)
	if err != nil {
		return err
	}
	switch f.spec.Mode {
	case ModeImmutable:
		if len(vals) == 1 && vals[0] == f.spec.Default {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrImmutable, name)
	case ModeReadOnly:
		if f.loaded || len(vals) != 1 {
			return fmt.Errorf("%w: %s", ErrReadOnly, name)
		}
		if f.fromEnv {
			return nil
		}
		if err := f.check(name, vals[0]); err != nil {
			return err
		}
		f.values = vals
		f.loaded = true
		return nil
	case ModeWrite:
		if len(vals) == 1 {
			return c.Set(name, vals[0])
		}
	}
	for _, v := range vals {
		if err := c.Append(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the current values to configPath as YAML.
func (c *Config) Save(configPath string) error {
	doc := make(map[string]any, len(c.fields))
	for name, f := range c.fields {
		if len(f.values) == 1 {
			doc[name] = f.values[0]
		} else {
			doc[name] = f.values
		}
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Environ turns KEY=VALUE pairs, as returned by os.Environ, into a map.
func Environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
