// Package service contains the configuration engine and the annex pipeline.
package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/guttosm/quote-configurator/internal/metrics"
	"github.com/guttosm/quote-configurator/internal/service/cache"
)

type removal int

const (
	removalCapacity removal = iota
	removalExpired
	removalSilent
)

type ttlItem[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a bounded LRU map whose entries expire ttl after their last
// Set or Touch. It backs the session store, the document template cache
// and the idempotency middleware.
type TTLCache[K comparable, V any] struct {
	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time
	onEvict  func(K, V)

	mu     sync.Mutex
	lru    *lru.Cache
	items  map[K]*ttlItem[V]
	reason removal

	stopCh   chan struct{}
	stopOnce sync.Once

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// CacheOption configures a TTLCache.
type CacheOption[K comparable, V any] func(*TTLCache[K, V])

// WithEvictionHook registers fn for entries dropped by expiry or capacity
// pressure. It runs with the cache lock held and must not call back into
// the cache.
func WithEvictionHook[K comparable, V any](fn func(K, V)) CacheOption[K, V] {
	return func(c *TTLCache[K, V]) {
		c.onEvict = fn
	}
}

// WithCacheClock replaces time.Now.
func WithCacheClock[K comparable, V any](now func() time.Time) CacheOption[K, V] {
	return func(c *TTLCache[K, V]) {
		c.now = now
	}
}

// NewTTLCache creates a cache holding at most capacity entries. name labels
// its metrics. Expired entries are swept in the background until Stop.
func NewTTLCache[K comparable, V any](name string, capacity int, ttl time.Duration, opts ...CacheOption[K, V]) *TTLCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	c := &TTLCache[K, V]{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		lru:      lru.New(capacity),
		items:    make(map[K]*ttlItem[V], capacity),
		stopCh:   make(chan struct{}),
	}
	c.lru.OnEvicted = c.removed
	for _, opt := range opts {
		opt(c)
	}
	go c.sweepLoop()
	return c
}

// removed runs for every entry leaving the LRU, whatever the cause.
func (c *TTLCache[K, V]) removed(k lru.Key, v interface{}) {
	key := k.(K)
	delete(c.items, key)

	switch c.reason {
	case removalSilent:
		return
	case removalCapacity:
		c.evictions.Add(1)
		metrics.RecordCacheOperation(c.name, "evict", "capacity")
	case removalExpired:
		metrics.RecordCacheOperation(c.name, "evict", "expired")
	}
	if c.onEvict != nil {
		c.onEvict(key, v.(*ttlItem[V]).value)
	}
}

func (c *TTLCache[K, V]) removeLocked(key K, reason removal) {
	c.reason = reason
	c.lru.Remove(key)
	c.reason = removalCapacity
}

// lookupLocked returns the live item for key and marks it recently used.
func (c *TTLCache[K, V]) lookupLocked(key K) (*ttlItem[V], bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	item := v.(*ttlItem[V])
	if c.now().After(item.expiresAt) {
		c.removeLocked(key, removalExpired)
		return nil, false
	}
	return item, true
}

// Get returns the value for key unless it is missing or expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.lookupLocked(key)
	if !ok {
		c.misses.Add(1)
		metrics.RecordCacheOperation(c.name, "get", "miss")
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	metrics.RecordCacheOperation(c.name, "get", "hit")
	return item.value, true
}

// Touch restarts the expiry of a live entry and reports whether one existed.
func (c *TTLCache[K, V]) Touch(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.lookupLocked(key)
	if ok {
		item.expiresAt = c.now().Add(c.ttl)
	}
	return ok
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &ttlItem[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.items[key] = item
	c.lru.Add(key, item)

	metrics.RecordCacheOperation(c.name, "set", "success")
	metrics.UpdateCacheMetrics(c.name, c.lru.Len(), c.capacity)
}

// Invalidate drops key without running the eviction hook.
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; ok {
		c.removeLocked(key, removalSilent)
		metrics.RecordCacheOperation(c.name, "invalidate", "success")
	}
}

// Clear drops every entry and resets the counters. The eviction hook is
// not run.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reason = removalSilent
	c.lru.Clear()
	c.reason = removalCapacity
	c.items = make(map[K]*ttlItem[V], c.capacity)

	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	metrics.RecordCacheOperation(c.name, "clear", "success")
	metrics.UpdateCacheMetrics(c.name, 0, c.capacity)
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Metrics returns the hit, miss and eviction counters.
func (c *TTLCache[K, V]) Metrics() cache.Metrics {
	return cache.Metrics{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		Capacity:  c.capacity,
	}
}

// Stop ends the background sweep. It is safe to call more than once.
func (c *TTLCache[K, V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *TTLCache[K, V]) sweepLoop() {
	interval := c.ttl
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCh:
			return
		}
	}
}

// sweep drops every expired entry and runs the eviction hook for each.
func (c *TTLCache[K, V]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	// The index is read directly so that sweeping leaves the recency order alone.
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			c.removeLocked(key, removalExpired)
		}
	}
	metrics.UpdateCacheMetrics(c.name, c.lru.Len(), c.capacity)
}
