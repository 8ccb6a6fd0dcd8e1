package cache

import "time"

// Clock supplies the current time. Production code passes time.Now; tests
// inject a fake so expiry is deterministic.
type Clock func() time.Time

// Store defines a minimal key-value store API with optional TTL per entry.
// The cooldown limiter runs on this abstraction so a multi-instance
// deployment can swap the in-process implementation for a shared cache.
type Store[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value with an optional TTL. If ttl <= 0, the entry does not expire.
	Set(key K, value V, ttl time.Duration)

	// Delete removes a key if present.
	Delete(key K)

	// PurgeExpired scans and removes expired entries.
	PurgeExpired()
}
