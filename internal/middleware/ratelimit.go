package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages one token bucket per client key. Requests per window
// refill continuously and the bucket holds at most one window's worth.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		now:      time.Now,
	}
}

func (rl *RateLimiter) get(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	e, ok := rl.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = now
	return e.lim
}

// Allow takes one token for key. When refused it returns how long until a
// token is available.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()
	lim := rl.get(key, now)
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Duration(math.MaxInt64)
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Sweep drops limiters idle for longer than idle.
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	n := 0
	for k, e := range rl.limiters {
		if now.Sub(e.lastSeen) > idle {
			delete(rl.limiters, k)
			n++
		}
	}
	return n
}

// Run sweeps idle limiters every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval, idle time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			rl.Sweep(idle)
		}
	}
}

// RateLimit answers 429 with Retry-After once a client IP runs out of tokens.
func RateLimit(rl *RateLimiter, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip rate limit for health check
			if r.URL.Path == "/health" || r.URL.Path == "/livez" {
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := rl.Allow(ClientIP(r))
			if !ok {
				IncrementRateLimited()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
				WriteError(w, http.StatusTooManyRequests, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	if s > 86400 {
		return 86400
	}
	return s
}

// ClientIP is RemoteAddr without the port. Behind a proxy, chi's RealIP
// middleware has already replaced RemoteAddr.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
