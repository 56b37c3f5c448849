// Package cache provides the key/value stores used for translation results,
// detected languages and persisted analytics. Every store enforces per-entry
// expiry so callers never observe an expired value.
package cache
