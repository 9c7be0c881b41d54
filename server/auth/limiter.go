package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	loginAttemptsPerMinute = 10
	loginBurst             = 5
	limiterIdleTTL         = 30 * time.Minute
)

// LoginLimiter throttles login attempts per client key, usually the remote IP.
type LoginLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*limiterEntry
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLoginLimiter() *LoginLimiter {
	return newLoginLimiter(rate.Every(time.Minute/loginAttemptsPerMinute), loginBurst)
}

func newLoginLimiter(limit rate.Limit, burst int) *LoginLimiter {
	return &LoginLimiter{
		limit:    limit,
		burst:    burst,
		limiters: map[string]*limiterEntry{},
		now:      time.Now,
	}
}

// Allow reports whether one more attempt from key may proceed now.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[key]
	if !ok {
		l.evictIdle(now)
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *LoginLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
}
