package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"soukly-backend/pkg/utils"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies per-IP token-bucket limiting. Stale visitors are
// evicted by a background janitor so the map does not grow unbounded.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit      rate.Limit
	burst      int
	sweepEvery time.Duration
	visitorTTL time.Duration

	cancel context.CancelFunc
}

func NewRateLimiter(ctx context.Context, limit rate.Limit, burst int, sweepEvery, visitorTTL time.Duration) *RateLimiter {
	ctx, cancel := context.WithCancel(ctx)
	rl := &RateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      limit,
		burst:      burst,
		sweepEvery: sweepEvery,
		visitorTTL: visitorTTL,
		cancel:     cancel,
	}
	go rl.janitor(ctx)
	return rl
}

func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(getClientIP(r)) {
				w.Header().Set("Retry-After", "1")
				utils.WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

func (rl *RateLimiter) janitor(ctx context.Context) {
	ticker := time.NewTicker(rl.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > rl.visitorTTL {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Shutdown stops the janitor goroutine.
func (rl *RateLimiter) Shutdown() {
	rl.cancel()
}
