package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the number of entries a MemoryStore keeps before
// evicting the least recently used one
const DefaultMemorySize = 10000

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a bounded in-process Store
type MemoryStore struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store holding at most size entries
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}

	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &MemoryStore{
		entries: entries,
		now:     time.Now,
	}, nil
}

// Get retrieves a value, dropping it if it has expired
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	entry, ok := m.entries.Get(key)
	if !ok {
		return "", false, nil
	}

	if entry.expired(m.now()) {
		m.entries.Remove(key)
		return "", false, nil
	}

	return entry.value, true, nil
}

// Put stores a value with the given time-to-live
func (m *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries.Add(key, entry)
	return nil
}

// Forget removes a single entry
func (m *MemoryStore) Forget(ctx context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

// Flush removes all entries
func (m *MemoryStore) Flush(ctx context.Context) error {
	m.entries.Purge()
	return nil
}

// Len returns the number of entries currently held, expired ones included
func (m *MemoryStore) Len() int {
	return m.entries.Len()
}
