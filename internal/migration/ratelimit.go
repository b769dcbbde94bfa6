package migration

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter applies a token bucket per endpoint path.
type RateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	rateLimit  rate.Limit
	burstLimit int
}

// NewRateLimiter allows ratePerSecond requests per endpoint with the given
// burst. A non-positive rate disables limiting.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  limit,
		burstLimit: burst,
	}
}

// Wait blocks until a request to endpoint is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	return r.limiter(endpoint).Wait(ctx)
}

// Allow reports whether a request to endpoint may proceed now.
func (r *RateLimiter) Allow(endpoint string) bool {
	return r.limiter(endpoint).Allow()
}

func (r *RateLimiter) limiter(endpoint string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[endpoint]
	if !ok {
		l = rate.NewLimiter(r.rateLimit, r.burstLimit)
		r.limiters[endpoint] = l
	}
	return l
}
