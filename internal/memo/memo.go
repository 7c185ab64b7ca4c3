// Package memo provides a small in-process TTL cache used to memoize
// expensive read paths (course trees, enrollment lists, seat counts).
// It is a best-effort staleness bound, not a consistency mechanism:
// writers invalidate the relevant keys and readers tolerate entries up
// to one TTL old.
package memo

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is a mutex-guarded TTL map. The clock is injected so tests can
// advance time without sleeping.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	ttl     time.Duration
	entries map[K]entry[V]

	// OnLookup, when set, observes every GetOrCompute as a hit or
	// miss. Set it before the cache is shared; it is called outside
	// the lock.
	OnLookup func(hit bool)
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// New builds a cache with the given TTL. A nil clock falls back to the
// real clock.
func New[K comparable, V any](ttl time.Duration, clock clockwork.Clock) *Cache[K, V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache[K, V]{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(e.expires) {
		if ok {
			delete(c.entries, key)
		}
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with a fresh TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expires: c.clock.Now().Add(c.ttl)}
}

// GetOrCompute returns the cached value for key, computing and storing
// it on a miss. Compute errors are returned without caching, so a
// failed load is retried on the next call. The lock is not held during
// compute; concurrent misses may compute twice and last-write wins.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	v, ok := c.Get(key)
	if c.OnLookup != nil {
		c.OnLookup(ok)
	}
	if ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete removes key if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len reports the number of stored entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
