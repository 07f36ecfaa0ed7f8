// Package targets loads bug-bounty target lists from YAML or JSON documents.
package targets

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bounty-recon/internal/domain"
)

// ErrUnsupportedShape is returned when the document is not a target list.
var ErrUnsupportedShape = errors.New("unsupported targets document shape")

// Load reads and parses a targets file.
func Load(path string) ([]*domain.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}

	targets, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return targets, nil
}

// Parse decodes a targets document. Accepted shapes:
//   - a sequence of target mappings
//   - a mapping with a "targets" sequence (a previous refresh output)
//   - a single target mapping (has a scalar "name")
//   - a mapping of name -> target mapping
//
// An empty or null document yields no targets.
func Parse(data []byte) ([]*domain.Target, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		return decodeSequence(root)
	case yaml.MappingNode:
		if seq := mappingValue(root, "targets"); seq != nil && seq.Kind == yaml.SequenceNode {
			return decodeSequence(seq)
		}
		if name := mappingValue(root, "name"); name != nil && name.Kind == yaml.ScalarNode {
			t, err := decodeTarget(root)
			if err != nil {
				return nil, err
			}
			return []*domain.Target{t}, nil
		}
		return decodeNamed(root)
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%w: top-level %s", ErrUnsupportedShape, kindName(root.Kind))
}

func decodeSequence(seq *yaml.Node) ([]*domain.Target, error) {
	out := make([]*domain.Target, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: target #%d is a %s", ErrUnsupportedShape, i, kindName(item.Kind))
		}
		t, err := decodeTarget(item)
		if err != nil {
			return nil, fmt.Errorf("target #%d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// decodeNamed handles "Aave: {chain: ethereum, ...}" documents, keeping document order.
func decodeNamed(m *yaml.Node) ([]*domain.Target, error) {
	out := make([]*domain.Target, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i], m.Content[i+1]
		if value.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: %q is a %s", ErrUnsupportedShape, key.Value, kindName(value.Kind))
		}
		t, err := decodeTarget(value)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", key.Value, err)
		}
		if t.Name == "" {
			t.Name = key.Value
		}
		out = append(out, t)
	}
	return out, nil
}

func decodeTarget(n *yaml.Node) (*domain.Target, error) {
	var fields map[string]any
	if err := n.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode target: %w", err)
	}
	return FromFields(fields), nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "empty node"
}
