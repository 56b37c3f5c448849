package tree

import "sort"

// Tree is an ordered mapping from string keys to values. A value is a
// *Tree, a []any, a string or any other scalar. Non-string YAML scalars are
// held as *yaml.Node so they are written back exactly as read; ToMap turns
// them into Go values.
type Tree struct {
	keys   []string
	values map[string]any
}

// New creates an empty tree
func New() *Tree {
	return &Tree{values: make(map[string]any)}
}

// Set stores value under key. A new key is appended, an existing key keeps
// its position.
func (t *Tree) Set(key string, value any) {
	if t.values == nil {
		t.values = make(map[string]any)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value stored under key
func (t *Tree) Get(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Keys returns the keys in order
func (t *Tree) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Len returns the number of keys
func (t *Tree) Len() int {
	return len(t.keys)
}

// FromMap converts a map into a tree. Go maps are unordered, so keys are
// sorted; nested maps and maps inside lists are converted as well.
func FromMap(m map[string]any) *Tree {
	t := New()
	for _, k := range sortedKeys(m) {
		t.Set(k, fromMapValue(m[k]))
	}
	return t
}

func fromMapValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return FromMap(val)
	case []map[string]any:
		list := make([]any, len(val))
		for i, item := range val {
			list[i] = FromMap(item)
		}
		return list
	case []any:
		list := make([]any, len(val))
		for i, item := range val {
			list[i] = fromMapValue(item)
		}
		return list
	default:
		return v
	}
}

// ToMap converts the tree into nested maps, dropping the key order
func (t *Tree) ToMap() map[string]any {
	m := make(map[string]any, len(t.keys))
	for _, k := range t.keys {
		m[k] = toMapValue(t.values[k])
	}
	return m
}

func toMapValue(v any) any {
	switch val := v.(type) {
	case *Tree:
		if val == nil {
			return nil
		}
		return val.ToMap()
	case []any:
		list := make([]any, len(val))
		for i, item := range val {
			list[i] = toMapValue(item)
		}
		return list
	default:
		return plainScalar(v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
