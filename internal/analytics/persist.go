package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codeberg.org/snonux/lingochain/internal/cache"
)

// Save stores the current snapshot under the analytics key of prefix. The
// entry lives for the configured retention period.
func (r *Recorder) Save(ctx context.Context, store cache.Store, prefix string) error {
	if !r.cfg.Enabled {
		return nil
	}

	data, err := json.Marshal(r.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode analytics: %w", err)
	}

	ttl := time.Duration(r.cfg.RetentionDays) * 24 * time.Hour
	if err := store.Put(ctx, cache.AnalyticsKey(prefix), string(data), ttl); err != nil {
		return fmt.Errorf("failed to save analytics: %w", err)
	}
	return nil
}

// Load restores a previously saved snapshot. A missing snapshot leaves the
// recorder untouched.
func (r *Recorder) Load(ctx context.Context, store cache.Store, prefix string) error {
	if !r.cfg.Enabled {
		return nil
	}

	data, ok, err := store.Get(ctx, cache.AnalyticsKey(prefix))
	if err != nil {
		return fmt.Errorf("failed to load analytics: %w", err)
	}
	if !ok {
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return fmt.Errorf("failed to decode analytics: %w", err)
	}

	r.Restore(snap)
	return nil
}

// Forget clears the recorder and removes the persisted snapshot
func (r *Recorder) Forget(ctx context.Context, store cache.Store, prefix string) error {
	r.Clear()
	if err := store.Forget(ctx, cache.AnalyticsKey(prefix)); err != nil {
		return fmt.Errorf("failed to forget analytics: %w", err)
	}
	return nil
}
