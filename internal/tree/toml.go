package tree

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// DecodeTOML reads a TOML document keeping the order keys appear in
func DecodeTOML(r io.Reader) (*Tree, error) {
	var m map[string]any
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, &InvalidInputError{Reason: "malformed TOML document", Err: err}
	}

	order := make(map[string]int)
	for i, key := range md.Keys() {
		path := key.String()
		if _, seen := order[path]; !seen {
			order[path] = i
		}
	}

	return orderedFromMap(m, "", order), nil
}

// orderedFromMap converts m like FromMap but orders keys by their position
// in the document. Keys without a position keep sorted order at the end.
func orderedFromMap(m map[string]any, prefix string, order map[string]int) *Tree {
	sorted := sortedKeys(m)
	keys := make([]string, 0, len(sorted))
	var unknown []string
	for _, k := range sorted {
		if _, ok := order[join(prefix, k)]; ok {
			keys = append(keys, k)
		} else {
			unknown = append(unknown, k)
		}
	}
	sortByPosition(keys, prefix, order)
	keys = append(keys, unknown...)

	t := New()
	for _, k := range keys {
		t.Set(k, orderedValue(m[k], join(prefix, k), order))
	}
	return t
}

func orderedValue(v any, path string, order map[string]int) any {
	switch val := v.(type) {
	case map[string]any:
		return orderedFromMap(val, path, order)
	case []map[string]any:
		list := make([]any, len(val))
		for i, item := range val {
			// array table keys are reported without an index
			list[i] = orderedFromMap(item, path, order)
		}
		return list
	case []any:
		list := make([]any, len(val))
		for i, item := range val {
			list[i] = orderedValue(item, path, order)
		}
		return list
	default:
		return v
	}
}

func sortByPosition(keys []string, prefix string, order map[string]int) {
	// insertion sort, key counts of a single table are small
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && order[join(prefix, keys[j])] < order[join(prefix, keys[j-1])]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

// EncodeTOML writes t as TOML. The encoder sorts keys, so the original key
// order is not preserved.
func EncodeTOML(w io.Writer, t *Tree) error {
	m, ok := tomlValue(t.ToMap()).(map[string]any)
	if !ok {
		return fmt.Errorf("failed to encode TOML: unexpected top level")
	}

	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return nil
}

// tomlValue converts values TOML cannot represent: json.Number becomes a Go
// number and nil becomes an empty string
func tomlValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = tomlValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = tomlValue(item)
		}
		return out
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case nil:
		return ""
	default:
		return v
	}
}
