package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTLCache is an LRU cache with per-entry expiry, keyed by record id.
// The HTTP layer keeps derived read models in it (trip summaries keyed by
// trip id) and invalidates on every write touching the record.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	cap     int
	ttl     time.Duration
	entries map[K]*list.Element
	order   *list.List // front = most recently used
}

type entry[K comparable, V any] struct {
	key     K
	val     V
	staleAt time.Time
}

func New[K comparable, V any](cap int, ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		cap:     cap,
		ttl:     ttl,
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached value. Expired entries are dropped on read.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[K, V])
	if time.Now().After(e.staleAt) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.val, true
}

// Put stores a value, replacing any entry under the same key and evicting
// the least recently used entry when over capacity.
func (c *TTLCache[K, V]) Put(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[K, V]{key: key, val: val, staleAt: time.Now().Add(c.ttl)}
	if elem, ok := c.entries[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.entries[key] = c.order.PushFront(e)
	if c.order.Len() > c.cap {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// GetOrCompute returns the cached value or computes, stores and returns a
// fresh one. The lock is not held during compute, so concurrent misses on
// the same key may compute more than once; the last result wins.
func (c *TTLCache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if val, ok := c.Get(key); ok {
		return val, nil
	}
	val, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Put(key, val)
	return val, nil
}

// Invalidate drops the entry for a key. Called from write paths so stale
// derived values never outlive the record that produced them.
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.remove(elem)
	}
}

func (c *TTLCache[K, V]) remove(elem *list.Element) {
	e := elem.Value.(*entry[K, V])
	delete(c.entries, e.key)
	c.order.Remove(elem)
}

// CleanExpired removes every expired entry and reports how many went.
func (c *TTLCache[K, V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var stale []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[K, V]).staleAt) {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		c.remove(elem)
	}
	return len(stale)
}

func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
