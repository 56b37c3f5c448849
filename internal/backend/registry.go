package backend

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Factory constructs a backend from its configuration
type Factory func(name string, cfg Config) (Backend, error)

var factories = map[string]Factory{
	"libre":    NewLibre,
	"lingva":   NewLingva,
	"mymemory": NewMyMemory,
	"google":   NewGoogle,
	"argos":    NewArgos,
	"openai":   NewOpenAI,
	"gemini":   NewGemini,
	"lambda":   NewLambda,
}

// Names returns the known backend names in sorted order
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the backend called name
func New(name string, cfg Config) (Backend, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown translation service: %s (known: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(name, cfg)
}

// Build constructs every configured backend once, wrapping each in a
// circuit breaker when enabled
func Build(configs map[string]Config, breaker BreakerConfig) (map[string]Backend, error) {
	backends := make(map[string]Backend, len(configs))
	for name, cfg := range configs {
		b, err := New(name, cfg)
		if err != nil {
			return nil, err
		}
		backends[name] = WithBreaker(b, breaker)
	}
	return backends, nil
}

// DefaultConfigs returns the out of the box service settings
func DefaultConfigs() map[string]Config {
	return map[string]Config{
		"libre": {
			Enabled:  true,
			Endpoint: DefaultLibreEndpoint,
			Timeout:  DefaultTimeout,
		},
		"lingva": {
			Enabled:  true,
			Endpoint: DefaultLingvaEndpoint,
			Timeout:  DefaultTimeout,
		},
		"mymemory": {
			Enabled:  true,
			Endpoint: DefaultMyMemoryEndpoint,
			Timeout:  DefaultTimeout,
		},
		"google": {
			Enabled:  false,
			Endpoint: DefaultGoogleEndpoint,
			Timeout:  DefaultTimeout,
		},
		"argos": {
			Enabled:  false,
			Endpoint: DefaultArgosEndpoint,
			Timeout:  DefaultArgosTimeout,
		},
		"openai": {
			Enabled: false,
			Timeout: 30 * time.Second,
		},
		"gemini": {
			Enabled: false,
			Model:   DefaultGeminiModel,
			Timeout: 30 * time.Second,
		},
		"lambda": {
			Enabled: false,
			Timeout: 30 * time.Second,
		},
	}
}
