// Package tree translates nested key/value documents such as locale files.
//
// A Tree keeps the key order of its source document. Translation flattens
// the string leaves in pre-order, translates them as one batch and rebuilds
// a tree of identical shape: same keys, same order, same nesting, with
// non-string scalars passed through untouched. Trees are read from and
// written to JSON, YAML and TOML.
package tree
