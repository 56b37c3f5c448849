package analytics

import (
	"encoding/json"
	"sync"
	"time"

	"codeberg.org/snonux/lingochain/internal"
)

const (
	// LogCapacity is the number of translations kept in the log
	LogCapacity = 100

	// ExcerptRunes is the length texts are truncated to in the log
	ExcerptRunes = 100
)

// Config controls what a Recorder tracks
type Config struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackCacheHits  bool `mapstructure:"track_cache_hits"`
	TrackLatency    bool `mapstructure:"track_latency"`
	LogTranslations bool `mapstructure:"log_translations"`
	RetentionDays   int  `mapstructure:"retention_days"`
}

// DefaultConfig returns the recorder defaults
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		TrackCacheHits: true,
		TrackLatency:   true,
		RetentionDays:  30,
	}
}

// LatencyStats is the running latency aggregate of one backend
type LatencyStats struct {
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	MinMs   float64 `json:"min_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// AvgMs returns the mean latency, 0 when nothing was recorded
func (l LatencyStats) AvgMs() float64 {
	if l.Count == 0 {
		return 0
	}
	return l.TotalMs / float64(l.Count)
}

// MarshalJSON adds the derived avg_ms to the stored fields
func (l LatencyStats) MarshalJSON() ([]byte, error) {
	type stored LatencyStats
	return json.Marshal(struct {
		stored
		AvgMs float64 `json:"avg_ms"`
	}{stored: stored(l), AvgMs: l.AvgMs()})
}

// LogEntry is one line of the translation log
type LogEntry struct {
	Source      string    `json:"source"`
	Translation string    `json:"translation"`
	TargetLang  string    `json:"target_lang"`
	Backend     string    `json:"service"`
	Timestamp   time.Time `json:"timestamp"`
}

// Snapshot is a point-in-time copy of the recorded analytics
type Snapshot struct {
	CacheHits    int64                   `json:"cache_hits"`
	CacheMisses  int64                   `json:"cache_misses"`
	Latency      map[string]LatencyStats `json:"latency"`
	Translations []LogEntry              `json:"translations"`
	Failures     int64                   `json:"failures"`
}

// TotalRequests returns hits plus misses
func (s Snapshot) TotalRequests() int64 {
	return s.CacheHits + s.CacheMisses
}

// HitRate returns the cache hit rate in percent
func (s Snapshot) HitRate() float64 {
	total := s.TotalRequests()
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total) * 100
}

// Recorder accumulates analytics in memory. It is safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	hits     int64
	misses   int64
	failures int64
	latency  map[string]LatencyStats

	// ring buffer of the most recent translations
	log   [LogCapacity]LogEntry
	head  int
	count int
}

// NewRecorder creates a recorder with the given configuration
func NewRecorder(cfg Config) *Recorder {
	return &Recorder{
		cfg:     cfg,
		now:     time.Now,
		latency: make(map[string]LatencyStats),
	}
}

// Config returns the recorder configuration
func (r *Recorder) Config() Config {
	return r.cfg
}

// RecordCacheHit counts a cache hit
func (r *Recorder) RecordCacheHit() {
	if !r.cfg.Enabled || !r.cfg.TrackCacheHits {
		return
	}
	r.mu.Lock()
	r.hits++
	r.mu.Unlock()
}

// RecordCacheMiss counts a cache miss
func (r *Recorder) RecordCacheMiss() {
	if !r.cfg.Enabled || !r.cfg.TrackCacheHits {
		return
	}
	r.mu.Lock()
	r.misses++
	r.mu.Unlock()
}

// RecordLatency adds one latency sample for backend
func (r *Recorder) RecordLatency(backend string, d time.Duration) {
	if !r.cfg.Enabled || !r.cfg.TrackLatency {
		return
	}

	ms := float64(d) / float64(time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.latency[backend]
	if !ok {
		stats = LatencyStats{MinMs: ms, MaxMs: ms}
	}
	stats.Count++
	stats.TotalMs += ms
	stats.MinMs = min(stats.MinMs, ms)
	stats.MaxMs = max(stats.MaxMs, ms)
	r.latency[backend] = stats
}

// RecordTranslation appends to the translation log, overwriting the oldest
// entry once the log is full
func (r *Recorder) RecordTranslation(source, translation, targetLang, backend string) {
	if !r.cfg.Enabled || !r.cfg.LogTranslations {
		return
	}

	entry := LogEntry{
		Source:      internal.Excerpt(source, ExcerptRunes),
		Translation: internal.Excerpt(translation, ExcerptRunes),
		TargetLang:  targetLang,
		Backend:     backend,
		Timestamp:   r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.push(entry)
}

func (r *Recorder) push(entry LogEntry) {
	r.log[(r.head+r.count)%LogCapacity] = entry
	if r.count < LogCapacity {
		r.count++
	} else {
		r.head = (r.head + 1) % LogCapacity
	}
}

// RecordFailure counts a call where every backend failed
func (r *Recorder) RecordFailure() {
	if !r.cfg.Enabled {
		return
	}
	r.mu.Lock()
	r.failures++
	r.mu.Unlock()
}

// Snapshot returns a copy of the current analytics. The translation log is
// ordered oldest first.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		CacheHits:    r.hits,
		CacheMisses:  r.misses,
		Failures:     r.failures,
		Latency:      make(map[string]LatencyStats, len(r.latency)),
		Translations: make([]LogEntry, 0, r.count),
	}
	for name, stats := range r.latency {
		snap.Latency[name] = stats
	}
	for i := 0; i < r.count; i++ {
		snap.Translations = append(snap.Translations, r.log[(r.head+i)%LogCapacity])
	}
	return snap
}

// Restore replaces the recorded analytics with snap. Only the newest
// LogCapacity translations are kept.
func (r *Recorder) Restore(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetLocked()
	r.hits = snap.CacheHits
	r.misses = snap.CacheMisses
	r.failures = snap.Failures
	for name, stats := range snap.Latency {
		r.latency[name] = stats
	}
	for _, entry := range snap.Translations {
		r.push(entry)
	}
}

// Clear discards everything recorded so far
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Recorder) resetLocked() {
	r.hits, r.misses, r.failures = 0, 0, 0
	r.latency = make(map[string]LatencyStats)
	r.log = [LogCapacity]LogEntry{}
	r.head, r.count = 0, 0
}
