package http

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/platform-smith-labs/siteedge/core"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-client bucket is kept.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter allows rps requests per second per client with the given
// burst. A burst below one is raised to one.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether the client identified by key may proceed now.
func (l *IPRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// WithRateLimit creates per-client rate limiting middleware.
//
// Clients are keyed by remote IP, so chi's RealIP middleware should run first
// when the server sits behind a proxy. Rejected requests receive 429 with a
// RATE_LIMITED error body and a Retry-After hint.
//
// Dependencies: *slog.Logger
// Context modifications: None
// Use: Apply to a route group via r.With(WithRateLimit(1, 5, logger))
func WithRateLimit(rps float64, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := NewIPRateLimiter(rps, burst)

	retryAfter := 1
	if rps > 0 && rps < 1 {
		retryAfter = int(1/rps + 0.5)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"client", key,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", GetRequestID(r),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				core.WriteAPIError(w, r, *core.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
