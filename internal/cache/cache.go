// Package cache provides a bounded TTL+LRU store used to memoize tone
// analysis results. One instance is constructed at startup and shared
// by reference across requests.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultCapacity bounds the cache when the caller passes a
// non-positive capacity.
const DefaultCapacity = 1000

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// Cache is a mutex-guarded key/value store with per-entry TTL and LRU
// eviction. Get and Set both refresh recency. An expired entry is
// treated as absent on Get and evicted there; expired-wins when a read
// races the deadline.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List               // front = most recently used
	items    map[string]*list.Element // key -> *entry[V]
	now      func() time.Time
}

// New creates a cache bounded to capacity entries.
func New[V any](capacity int) *Cache[V] {
	return NewWithClock[V](capacity, time.Now)
}

// NewWithClock creates a cache with an injected clock, for tests.
func NewWithClock[V any](capacity int, now func() time.Time) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
		now:      now,
	}
}

// Get returns the value for key, if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*entry[V])
	if !c.now().Before(ent.expiresAt) {
		c.removeElement(el)
		return zero, false
	}
	c.ll.MoveToFront(el)
	return ent.value, true
}

// Set stores value under key with the given ttl, refreshing recency.
// If the insert pushes the cache over capacity, least-recently-used
// entries are evicted until the bound holds. Eviction is silent.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[V])
		ent.value = value
		ent.expiresAt = expiresAt
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = el

	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

func (c *Cache[V]) removeElement(el *list.Element) {
	ent := el.Value.(*entry[V])
	c.ll.Remove(el)
	delete(c.items, ent.key)
}
