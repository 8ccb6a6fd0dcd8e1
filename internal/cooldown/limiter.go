// Package cooldown rate-limits repeated failures (login attempts, admin
// bulk actions) through an injected TTL store and clock, so multi-instance
// deployments can back it with a shared cache instead of process memory.
package cooldown

import (
	"time"

	"uat-portal-api/internal/cache"
)

// Limiter counts failures per key inside a sliding window and blocks a key
// once it reaches the maximum.
type Limiter struct {
	store  cache.Store[string, int]
	max    int
	window time.Duration
}

// NewLimiter builds a Limiter over store allowing max failures per window.
func NewLimiter(store cache.Store[string, int], max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

// Blocked reports whether key has exhausted its allowance.
func (l *Limiter) Blocked(key string) bool {
	count, ok := l.store.Get(key)
	return ok && count >= l.max
}

// Fail records one failure for key. Each failure restarts the window.
func (l *Limiter) Fail(key string) {
	count, _ := l.store.Get(key)
	l.store.Set(key, count+1, l.window)
}

// Reset clears the failure count for key, typically after a success.
func (l *Limiter) Reset(key string) {
	l.store.Delete(key)
}
