package cache

import (
	"sync"
	"time"
)

// entry stores a cached value and its absolute expiration timestamp.
type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

// TTLStore is a goroutine-safe map-backed store with per-item TTL. There is
// no background janitor; cleanup is lazy or via PurgeExpired.
type TTLStore[K comparable, V any] struct {
	mu    sync.RWMutex
	clock Clock
	items map[K]entry[V]
}

// NewTTLStore constructs a TTLStore reading time from clock.
func NewTTLStore[K comparable, V any](clock Clock) *TTLStore[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTLStore[K, V]{
		clock: clock,
		items: make(map[K]entry[V]),
	}
}

// Get implements Store.Get.
func (s *TTLStore[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero V
	e, ok := s.items[key]
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && s.clock().After(e.expiresAt) {
		// expired; treated as a miss, removal deferred to PurgeExpired
		return zero, false
	}
	return e.value, true
}

// Set implements Store.Set.
func (s *TTLStore[K, V]) Set(key K, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = s.clock().Add(ttl)
	}
	s.items[key] = entry[V]{value: value, expiresAt: exp}
}

// Delete implements Store.Delete.
func (s *TTLStore[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// PurgeExpired implements Store.PurgeExpired.
func (s *TTLStore[K, V]) PurgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for k, e := range s.items {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.items, k)
		}
	}
}

// Ensure TTLStore implements Store at compile time.
var _ Store[string, int] = (*TTLStore[string, int])(nil)
