package tree

import (
	"fmt"
	"iter"
	"strconv"
)

// Leaves yields the path and text of every string leaf in deterministic
// pre-order. Paths join keys and list indexes with dots and are meant for
// diagnostics only. The sequence can be ranged over any number of times.
func Leaves(t *Tree) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if t == nil {
			return
		}
		walkTree(t, "", yield)
	}
}

func walkTree(t *Tree, prefix string, yield func(string, string) bool) bool {
	for _, k := range t.keys {
		if !walkValue(t.values[k], join(prefix, k), yield) {
			return false
		}
	}
	return true
}

func walkValue(v any, path string, yield func(string, string) bool) bool {
	switch val := v.(type) {
	case string:
		return yield(path, val)
	case *Tree:
		if val == nil {
			return true
		}
		return walkTree(val, path, yield)
	case []any:
		for i, item := range val {
			if !walkValue(item, join(path, strconv.Itoa(i)), yield) {
				return false
			}
		}
	}
	return true
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Texts collects the string leaves of t in pre-order
func Texts(t *Tree) []string {
	var texts []string
	for _, text := range Leaves(t) {
		texts = append(texts, text)
	}
	return texts
}

// Rebuild returns a copy of t with the string leaves replaced, in pre-order,
// by translations. The number of translations must match the number of
// string leaves.
func Rebuild(t *Tree, translations []string) (*Tree, error) {
	if t == nil {
		return nil, &InvalidInputError{Reason: "nil tree"}
	}

	r := &rebuilder{translations: translations}
	out := r.tree(t)
	if r.overflow {
		return nil, fmt.Errorf("rebuild: more string leaves than the %d translations given", len(translations))
	}
	if r.next != len(translations) {
		return nil, fmt.Errorf("rebuild: %d translations for %d string leaves", len(translations), r.next)
	}
	return out, nil
}

// rebuilder consumes translations in the order Leaves produces texts
type rebuilder struct {
	translations []string
	next         int
	overflow     bool
}

func (r *rebuilder) tree(t *Tree) *Tree {
	out := New()
	for _, k := range t.keys {
		out.Set(k, r.value(t.values[k]))
	}
	return out
}

func (r *rebuilder) value(v any) any {
	switch val := v.(type) {
	case string:
		if r.next >= len(r.translations) {
			r.overflow = true
			return val
		}
		s := r.translations[r.next]
		r.next++
		return s
	case *Tree:
		if val == nil {
			return v
		}
		return r.tree(val)
	case []any:
		list := make([]any, len(val))
		for i, item := range val {
			list[i] = r.value(item)
		}
		return list
	default:
		return v
	}
}
