package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the sustained requests per second allowed per client.
	DefaultRate = 10
	// DefaultBurst is the burst size allowed per client.
	DefaultBurst = 20
	// DefaultSweepInterval is how often Run drops idle client limiters.
	DefaultSweepInterval = time.Minute
	// idleTTL is how long an unused client limiter is kept.
	idleTTL = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-key rate limiting.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*clientLimiter
	rate   rate.Limit
	burst  int
	now    func() time.Time
}

// NewRateLimiter creates a rate limiter allowing r requests per second with
// the given burst for each key. Non-positive values fall back to the defaults.
func NewRateLimiter(r float64, burst int) *RateLimiter {
	if r <= 0 {
		r = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &RateLimiter{
		limits: make(map[string]*clientLimiter),
		rate:   rate.Limit(r),
		burst:  burst,
		now:    time.Now,
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limits[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limits[key] = cl
	}
	cl.lastSeen = rl.now()
	return cl.limiter
}

// Sweep drops limiters unused for longer than idleTTL and returns how many
// were dropped.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	dropped := 0
	for k, cl := range rl.limits {
		if now.Sub(cl.lastSeen) > idleTTL {
			delete(rl.limits, k)
			dropped++
		}
	}
	return dropped
}

// Run sweeps idle limiters every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).AllowN(rl.now(), 1)
}

// Wait waits for a request to be allowed.
// Returns error if the context is cancelled or the wait would exceed its deadline.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	return rl.getLimiter(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

// RateLimit returns echo middleware limiting requests per client IP. A
// rejected request goes to onLimit, which writes the response.
func RateLimit(rl *RateLimiter, onLimit func(c echo.Context) error) echo.MiddlewareFunc {
	if onLimit == nil {
		onLimit = func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return onLimit(c)
			}
			return next(c)
		}
	}
}
