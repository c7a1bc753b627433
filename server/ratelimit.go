package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user (or remote address before auth).
type RateLimiter struct {
	clock clockwork.Clock
	limit rate.Limit
	burst int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func NewRateLimiter(requestsPerSecond float64, burst int, clock clockwork.Clock) *RateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clock:     clock,
		limit:     rate.Limit(requestsPerSecond),
		burst:     burst,
		visitors:  make(map[string]*visitor),
		lastSweep: clock.Now(),
	}
}

// Allow takes a token from key's bucket.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.evictLocked(now)
	return v.limiter.AllowN(now, 1)
}

// evictLocked drops idle visitors, scanning the map at most once per visitorTTL.
func (l *RateLimiter) evictLocked(now time.Time) {
	if now.Sub(l.lastSweep) < visitorTTL {
		return
	}
	l.lastSweep = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

// Middleware rejects requests over the limit with 429. It keys on the authenticated user
// and must run after AuthMiddleware to do so.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := UserIDFromContext(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		if !l.Allow(key) {
			w.Header().Set("Retry-After", "10")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}
