// Package watch flushes the translation cache when locale files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingochain/internal/tree"
)

// DefaultDebounce collapses the burst of events an editor save produces
const DefaultDebounce = 250 * time.Millisecond

// Flusher is what gets invalidated, usually the orchestrator
type Flusher interface {
	ClearCache(ctx context.Context) error
}

// Watcher watches locale files and directories
type Watcher struct {
	fs       *fsnotify.Watcher
	flusher  Flusher
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	flushes int
}

// New watches every path. Directories are watched recursively.
func New(paths []string, flusher Flusher, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{fs: fw, flusher: flusher, logger: logger, debounce: DefaultDebounce}
	for _, path := range paths {
		if err := w.add(path); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// SetDebounce changes the quiet period before a flush
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

func (w *Watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	if !info.IsDir() {
		return w.fs.Add(path)
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fs.Add(p); err != nil {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
		}
		return nil
	})
}

// Run processes events until ctx is cancelled, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("locale file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.flush(ctx)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	// new sub directories are watched too
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return false
		}
	}

	_, err := tree.FormatOf(event.Name)
	return err == nil
}

func (w *Watcher) flush(ctx context.Context) {
	if err := w.flusher.ClearCache(ctx); err != nil {
		w.logger.Error("failed to invalidate translation cache", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.flushes++
	w.mu.Unlock()
	w.logger.Info("translation cache invalidated after locale change")
}

// Flushes returns how often the cache was invalidated
func (w *Watcher) Flushes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushes
}
