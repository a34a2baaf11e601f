// Package schemafile reads and writes codec schemas as YAML documents.
//
// A schema file is a mapping from field name to either a wire type name or
// a nested mapping:
//
//	age: u32
//	joined: date
//	posts:
//	  id: string
//	  at: date
package schemafile

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/tagwire"
)

// ErrFormat reports a document that is not a schema.
var ErrFormat = errors.New("schemafile: malformed schema")

// Parse decodes a YAML schema document. An empty document yields an empty
// schema.
func Parse(data []byte) (tagwire.Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return tagwire.Schema{}, nil
	}
	s, err := fromNode(doc.Content[0])
	if err != nil {
		return nil, err
	}
	return s, s.Validate()
}

func fromNode(n *yaml.Node) (tagwire.Schema, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping", ErrFormat, n.Line)
	}
	s := make(tagwire.Schema, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if _, dup := s[k.Value]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate field %q", ErrFormat, k.Line, k.Value)
		}
		switch v.Kind {
		case yaml.ScalarNode:
			t, err := tagwire.ParseWireType(v.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: field %q: %w", v.Line, k.Value, err)
			}
			s[k.Value] = tagwire.Primitive(t)
		case yaml.MappingNode:
			nested, err := fromNode(v)
			if err != nil {
				return nil, err
			}
			s[k.Value] = tagwire.Nested(nested)
		default:
			return nil, fmt.Errorf("%w: line %d: field %q must be a type name or a mapping", ErrFormat, v.Line, k.Value)
		}
	}
	return s, nil
}

// Load reads and parses the schema file at path.
func Load(path string) (tagwire.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Marshal renders s as YAML with fields sorted by name.
func Marshal(s tagwire.Schema) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return yaml.Marshal(toNode(s))
}

func toNode(s tagwire.Schema) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		f := s[k]
		if f.IsNested() {
			n.Content = append(n.Content, key, toNode(f.Schema()))
			continue
		}
		n.Content = append(n.Content, key, &yaml.Node{Kind: yaml.ScalarNode, Value: f.Type().String()})
	}
	return n
}

// Save writes s to path.
func Save(path string, s tagwire.Schema) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
