package cache

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/snonux/lingochain/internal"
)

// DefaultPrefix is the key prefix used when none is configured
const DefaultPrefix = "translate"

// Store is a key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key. Missing and expired entries report false.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put atomically replaces the value for key. A ttl <= 0 never expires.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Forget removes a single entry
	Forget(ctx context.Context, key string) error

	// Flush removes every entry
	Flush(ctx context.Context) error
}

// UnavailableError reports a cache store transport failure
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("cache unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Key derives the cache key of a translation.
// Format: prefix:source:target:md5(text)
func Key(prefix, sourceLang, targetLang, text string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}
	return fmt.Sprintf("%s:%s:%s:%s", prefix, sourceLang, targetLang, internal.ContentHash(text))
}

// DetectKey derives the cache key of a language detection result. It does
// not depend on any language since detection only looks at the text.
func DetectKey(prefix, text string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s:detect:%s", prefix, internal.ContentHash(text))
}

// AnalyticsKey is the key the analytics snapshot is persisted under
func AnalyticsKey(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + ":analytics"
}
