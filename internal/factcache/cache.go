// Package factcache memoizes per-repository facts with a bounded lifetime.
package factcache

import (
	"sync"
	"time"
)

// Entry is a cached value and the time it was stored.
type Entry[T any] struct {
	Value     T
	Timestamp time.Time
}

// Fresh reports whether the entry is still valid at now for ttl.
func (e Entry[T]) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) < ttl
}

// Cache maps keys to entries that expire after TTL. Expired entries are
// treated as absent and are never returned.
type Cache[T any] struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]Entry[T]
}

// New creates a cache with the given TTL. A nil clock uses time.Now.
func New[T any](ttl time.Duration, now func() time.Time) *Cache[T] {
	if now == nil {
		now = time.Now
	}
	return &Cache[T]{
		ttl:     ttl,
		now:     now,
		entries: map[string]Entry[T]{},
	}
}

// TTL returns the configured lifetime.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Get returns the value for key when a fresh entry exists.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || !entry.Fresh(c.now(), c.ttl) {
		var zero T
		return zero, false
	}
	return entry.Value, true
}

// Set stores value under key with a fresh timestamp.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[T]{Value: value, Timestamp: c.now()}
}

// Delete drops key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]Entry[T]{}
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrLoad returns the cached value for key, or calls load and caches
// its result. Errors are not cached.
func (c *Cache[T]) GetOrLoad(key string, load func() (T, error)) (T, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, value)
	return value, nil
}
