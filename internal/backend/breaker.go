package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen marks calls rejected by an open circuit breaker. Such calls
// never reached the service.
var ErrCircuitOpen = errors.New("circuit breaker open")

// BreakerConfig configures the per-backend circuit breaker
type BreakerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// MaxFailures is the number of consecutive failures that opens the circuit
	MaxFailures uint32 `mapstructure:"max_failures"`

	// OpenTimeout is how long the circuit stays open before probing again
	OpenTimeout time.Duration `mapstructure:"open_timeout"`

	// HalfOpenRequests is the number of trial calls allowed while half-open
	HalfOpenRequests uint32 `mapstructure:"half_open_requests"`
}

// DefaultBreakerConfig returns the breaker defaults, disabled
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:      5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

type breakerBackend struct {
	Backend
	cb *gobreaker.CircuitBreaker
}

// WithBreaker wraps b so that Translate calls fail fast once the service has
// failed MaxFailures times in a row. Detection and language listing pass
// through unguarded.
func WithBreaker(b Backend, cfg BreakerConfig) Backend {
	if !cfg.Enabled {
		return b
	}

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultBreakerConfig().MaxFailures
	}

	settings := gobreaker.Settings{
		Name:        b.Name(),
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}

	return &breakerBackend{
		Backend: b,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *breakerBackend) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.Backend.Translate(ctx, text, targetLang, sourceLang)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &Error{Backend: b.Name(), Err: fmt.Errorf("%w: %v", ErrCircuitOpen, err)}
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// State reports the breaker state, used by the backend check
func (b *breakerBackend) State() string {
	return b.cb.State().String()
}
