// Package cache provides a small generic TTL cache.
package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe map with per-entry expiry. Expired entries are
// dropped lazily on access and during Set sweeps; there is no background
// goroutine to manage.
type Cache[K comparable, V any] struct {
	mu         sync.RWMutex
	items      map[K]item[V]
	defaultTTL time.Duration
}

// New creates a cache whose entries expire after defaultTTL.
func New[K comparable, V any](defaultTTL time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		items:      make(map[K]item[V]),
		defaultTTL: defaultTTL,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(it.expiresAt) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistic sweep keeps the map from accumulating dead entries.
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
		}
	}

	c.items[key] = item[V]{value: value, expiresAt: now.Add(ttl)}
}

// Delete removes key from the cache.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of non-expired entries.
func (c *Cache[K, V]) Len() int {
	now := time.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, it := range c.items {
		if !now.After(it.expiresAt) {
			n++
		}
	}
	return n
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]item[V])
}
