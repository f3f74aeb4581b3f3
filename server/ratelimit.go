package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginLimiter throttles login attempts per client key to slow down
// credential stuffing. Idle limiters are dropped opportunistically.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	perMin   int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTTL = 10 * time.Minute

func newLoginLimiter(perMin int) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*limiterEntry),
		perMin:   perMin,
	}
}

func (l *loginLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.perMin),
		}
		l.limiters[key] = entry
		l.evictStale(now)
	}
	entry.lastSeen = now

	return entry.limiter.Allow()
}

// evictStale runs under the lock, only when a new key is added
func (l *loginLimiter) evictStale(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
}
