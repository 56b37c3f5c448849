package translator

import (
	"fmt"
	"time"
)

// Config controls the orchestrator
type Config struct {
	DefaultService string          `mapstructure:"default_service"`
	FallbackChain  []string        `mapstructure:"fallback_chain"`
	SourceLang     string          `mapstructure:"source_lang"`
	TargetLang     string          `mapstructure:"target_lang"`
	Cache          CacheConfig     `mapstructure:"cache"`
	Batch          BatchConfig     `mapstructure:"batch"`
	Detection      DetectionConfig `mapstructure:"detection"`
}

// CacheConfig controls result caching
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
}

// BatchConfig controls TranslateBatch
type BatchConfig struct {
	ChunkSize       int           `mapstructure:"chunk_size"`
	Delay           time.Duration `mapstructure:"delay"`
	DelayOnCacheHit bool          `mapstructure:"delay_on_cache_hit"`
	MaxConcurrent   int           `mapstructure:"max_concurrent"`
}

// DetectionConfig controls language detection
type DetectionConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	CacheDetections bool `mapstructure:"cache_detections"`
}

// DefaultConfig returns the orchestrator defaults
func DefaultConfig() Config {
	return Config{
		DefaultService: "libre",
		FallbackChain:  []string{"libre", "lingva", "mymemory", "google"},
		SourceLang:     "auto",
		TargetLang:     "en",
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
			Prefix:  "translate",
		},
		Batch: BatchConfig{
			ChunkSize:     50,
			Delay:         100 * time.Millisecond,
			MaxConcurrent: 1,
		},
		Detection: DetectionConfig{
			Enabled:         true,
			CacheDetections: true,
		},
	}
}

// Validate checks the configuration for values the orchestrator cannot work with
func (c Config) Validate() error {
	if c.TargetLang == "" {
		return fmt.Errorf("target language must not be empty")
	}
	if len(c.FallbackChain) == 0 {
		return fmt.Errorf("fallback chain must name at least one service")
	}
	if c.Batch.ChunkSize < 0 {
		return fmt.Errorf("batch chunk size must not be negative, got %d", c.Batch.ChunkSize)
	}
	if c.Batch.MaxConcurrent < 0 {
		return fmt.Errorf("batch max concurrency must not be negative, got %d", c.Batch.MaxConcurrent)
	}
	if c.Batch.Delay < 0 {
		return fmt.Errorf("batch delay must not be negative, got %v", c.Batch.Delay)
	}
	return nil
}
