package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// Open creates the store selected by driver: "memory" (the default) or "sqlite".
// The returned close function is always non-nil.
func Open(driver, path string, size int) (Store, func() error, error) {
	noop := func() error { return nil }

	switch driver {
	case "", "memory":
		store, err := NewMemoryStore(size)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case "sqlite":
		if path == "" {
			return nil, noop, fmt.Errorf("sqlite cache driver needs a path")
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, noop, fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
		store, err := NewSQLiteStore(path)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown cache driver: %s", driver)
	}
}
