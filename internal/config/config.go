// Package config loads lingochain settings from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/lingochain/internal/analytics"
	"codeberg.org/snonux/lingochain/internal/backend"
	"codeberg.org/snonux/lingochain/internal/cache"
	"codeberg.org/snonux/lingochain/internal/locale"
	"codeberg.org/snonux/lingochain/internal/logging"
	"codeberg.org/snonux/lingochain/internal/translator"
)

// EnvPrefix is prepended to every environment override, e.g.
// LINGOCHAIN_TARGET_LANG or LINGOCHAIN_SERVICES_LIBRE_ENDPOINT
const EnvPrefix = "LINGOCHAIN"

// Config is the complete lingochain configuration
type Config struct {
	DefaultService string                     `mapstructure:"default_service"`
	FallbackChain  []string                   `mapstructure:"fallback_chain"`
	SourceLang     string                     `mapstructure:"source_lang"`
	TargetLang     string                     `mapstructure:"target_lang"`
	Cache          CacheConfig                `mapstructure:"cache"`
	Batch          translator.BatchConfig     `mapstructure:"batch"`
	Detection      translator.DetectionConfig `mapstructure:"detection"`
	Analytics      analytics.Config           `mapstructure:"analytics"`
	Services       map[string]backend.Config  `mapstructure:"services"`
	Breaker        backend.BreakerConfig      `mapstructure:"breaker"`
	Log            logging.Config             `mapstructure:"log"`
	Server         ServerConfig               `mapstructure:"server"`
	Locale         locale.Config              `mapstructure:"locale"`
}

// CacheConfig holds the orchestrator cache settings plus the store selection
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`

	// Driver is "memory" or "sqlite"
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	Size   int    `mapstructure:"size"`

	// AutoInvalidate flushes the cache when a file below WatchPaths changes
	AutoInvalidate bool     `mapstructure:"auto_invalidate"`
	WatchPaths     []string `mapstructure:"watch_paths"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// DefaultCachePath is where the sqlite cache lives unless configured otherwise
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lingochain-cache.db"
	}
	return filepath.Join(home, ".local", "state", "lingochain", "cache.db")
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	tc := translator.DefaultConfig()
	v.SetDefault("default_service", tc.DefaultService)
	v.SetDefault("fallback_chain", tc.FallbackChain)
	v.SetDefault("source_lang", tc.SourceLang)
	v.SetDefault("target_lang", tc.TargetLang)

	v.SetDefault("cache.enabled", tc.Cache.Enabled)
	v.SetDefault("cache.ttl", tc.Cache.TTL)
	v.SetDefault("cache.prefix", tc.Cache.Prefix)
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", DefaultCachePath())
	v.SetDefault("cache.size", cache.DefaultMemorySize)
	v.SetDefault("cache.auto_invalidate", true)
	v.SetDefault("cache.watch_paths", []string{})

	v.SetDefault("batch.chunk_size", tc.Batch.ChunkSize)
	v.SetDefault("batch.delay", tc.Batch.Delay)
	v.SetDefault("batch.delay_on_cache_hit", tc.Batch.DelayOnCacheHit)
	v.SetDefault("batch.max_concurrent", tc.Batch.MaxConcurrent)

	v.SetDefault("detection.enabled", tc.Detection.Enabled)
	v.SetDefault("detection.cache_detections", tc.Detection.CacheDetections)

	ac := analytics.DefaultConfig()
	v.SetDefault("analytics.enabled", ac.Enabled)
	v.SetDefault("analytics.track_cache_hits", ac.TrackCacheHits)
	v.SetDefault("analytics.track_latency", ac.TrackLatency)
	v.SetDefault("analytics.log_translations", ac.LogTranslations)
	v.SetDefault("analytics.retention_days", ac.RetentionDays)

	for name, sc := range backend.DefaultConfigs() {
		key := "services." + name + "."
		v.SetDefault(key+"enabled", sc.Enabled)
		v.SetDefault(key+"endpoint", sc.Endpoint)
		v.SetDefault(key+"timeout", sc.Timeout)
		v.SetDefault(key+"api_key", sc.APIKey)
		v.SetDefault(key+"email", sc.Email)
		v.SetDefault(key+"model", sc.Model)
		v.SetDefault(key+"region", sc.Region)
		v.SetDefault(key+"function", sc.Function)
		v.SetDefault(key+"rate_limit", sc.RateLimit)
		v.SetDefault(key+"burst", sc.Burst)
	}

	bc := backend.DefaultBreakerConfig()
	v.SetDefault("breaker.enabled", bc.Enabled)
	v.SetDefault("breaker.max_failures", bc.MaxFailures)
	v.SetDefault("breaker.open_timeout", bc.OpenTimeout)
	v.SetDefault("breaker.half_open_requests", bc.HalfOpenRequests)

	lc := logging.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.file", lc.File)
	v.SetDefault("log.max_size", lc.MaxSize)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age", lc.MaxAge)
	v.SetDefault("log.compress", lc.Compress)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	loc := locale.DefaultConfig()
	v.SetDefault("locale.query_param", loc.QueryParam)
	v.SetDefault("locale.cookie_name", loc.CookieName)
	v.SetDefault("locale.supported", loc.Supported)
	v.SetDefault("locale.set_cookie", loc.SetCookie)
}

// Load applies defaults and environment overrides to v and decodes the result.
// Reading a config file is left to the caller.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyKeyEnv(cfg.Services, "openai", "OPENAI_API_KEY")
	applyKeyEnv(cfg.Services, "gemini", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyKeyEnv fills a missing API key from the provider's usual variables
func applyKeyEnv(services map[string]backend.Config, name string, envVars ...string) {
	sc, ok := services[name]
	if !ok || sc.APIKey != "" {
		return
	}
	for _, env := range envVars {
		if key := os.Getenv(env); key != "" {
			sc.APIKey = key
			services[name] = sc
			return
		}
	}
}

// Translator returns the orchestrator part of the configuration
func (c *Config) Translator() translator.Config {
	return translator.Config{
		DefaultService: c.DefaultService,
		FallbackChain:  c.FallbackChain,
		SourceLang:     c.SourceLang,
		TargetLang:     c.TargetLang,
		Cache: translator.CacheConfig{
			Enabled: c.Cache.Enabled,
			TTL:     c.Cache.TTL,
			Prefix:  c.Cache.Prefix,
		},
		Batch:     c.Batch,
		Detection: c.Detection,
	}
}

// Validate checks values the rest of lingochain cannot work with
func (c *Config) Validate() error {
	if err := c.Translator().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Cache.Driver {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("invalid config: unknown cache driver %q (use memory or sqlite)", c.Cache.Driver)
	}

	known := make(map[string]bool)
	for _, name := range backend.Names() {
		known[name] = true
	}
	var unknown []string
	for name := range c.Services {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("invalid config: unknown services %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(backend.Names(), ", "))
	}

	if c.Analytics.RetentionDays < 0 {
		return fmt.Errorf("invalid config: analytics retention must not be negative")
	}
	return nil
}
