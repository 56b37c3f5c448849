package backend

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// newLimiter returns the token bucket of cfg, nil when calls are unlimited
func newLimiter(cfg Config) *rate.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
}

// begin waits for the rate limiter and derives the per-call context
func begin(ctx context.Context, limiter *rate.Limiter, cfg Config) (context.Context, context.CancelFunc, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	return callCtx, cancel, nil
}
