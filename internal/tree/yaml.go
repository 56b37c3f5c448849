package tree

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML reads a YAML mapping keeping its key order
func (t *Tree) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := treeFromNode(node)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// MarshalYAML emits the keys in tree order
func (t *Tree) MarshalYAML() (any, error) {
	return treeToNode(t)
}

// DecodeYAML reads a YAML document whose top level must be a mapping
func DecodeYAML(r io.Reader) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, &InvalidInputError{Reason: "malformed YAML document", Err: err}
	}

	t, err := treeFromNode(&doc)
	if err != nil {
		return nil, &InvalidInputError{Reason: "unsupported YAML document", Err: err}
	}
	return t, nil
}

// EncodeYAML writes t as YAML
func EncodeYAML(w io.Writer, t *Tree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

func treeFromNode(node *yaml.Node) (*Tree, error) {
	node = resolveNode(node)
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return New(), nil
		}
		node = resolveNode(node.Content[0])
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping, got %s", kindName(node.Kind))
	}
	return mappingToTree(node)
}

func mappingToTree(node *yaml.Node) (*Tree, error) {
	t := New()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := resolveNode(node.Content[i])
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		// merge keys (<<) are kept as plain keys
		value, err := nodeToValue(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", keyNode.Value, err)
		}
		t.Set(keyNode.Value, value)
	}
	return t, nil
}

func nodeToValue(node *yaml.Node) (any, error) {
	node = resolveNode(node)
	switch node.Kind {
	case yaml.MappingNode:
		return mappingToTree(node)
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := nodeToValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			// numbers, booleans, nulls and timestamps are written back verbatim
			return verbatimScalar(node), nil
		}
		var v string
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %s", node.Line, kindName(node.Kind))
	}
}

// verbatimScalar copies a scalar without its anchor, so an aliased value
// can be emitted more than once
func verbatimScalar(node *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   node.ShortTag(),
		Value: node.Value,
		Style: node.Style,
	}
}

// plainScalar decodes a verbatim YAML scalar into its Go value. Other values
// are returned unchanged.
func plainScalar(v any) any {
	node, ok := v.(*yaml.Node)
	if !ok || node == nil {
		return v
	}
	var out any
	if err := node.Decode(&out); err != nil {
		return node.Value
	}
	return out
}

// plainValue applies plainScalar to v and to the items of lists
func plainValue(v any) any {
	switch val := v.(type) {
	case *yaml.Node:
		return plainScalar(val)
	case []any:
		list := make([]any, len(val))
		for i, item := range val {
			list[i] = plainValue(item)
		}
		return list
	default:
		return v
	}
}

func resolveNode(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func treeToNode(t *Tree) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range t.keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valueNode, err := valueToNode(t.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

func valueToNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case *Tree:
		if val == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
		}
		return treeToNode(val)
	case *yaml.Node:
		return verbatimScalar(val), nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := valueToNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case json.Number:
		tag := "!!float"
		if _, err := val.Int64(); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: val.String()}, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, err
		}
		return node, nil
	}
}

func kindName(kind yaml.Kind) string {
	switch kind {
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
	default:
		return "unknown"
	}
}
