package util

import "sync"

// LRUCache is a thread-safe, capacity-bounded least-recently-used cache.
// The analyzer keeps parsed file facts in one, keyed by path, so watch mode
// re-checks only what changed without holding every tree in memory.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*lruNode[K, V]

	// Recency list over the nodes themselves: head is most recent,
	// tail least.
	head, tail *lruNode[K, V]
}

type lruNode[K comparable, V any] struct {
	key        K
	value      V
	prev, next *lruNode[K, V]
}

// NewLRUCache creates a cache holding at most capacity entries. Values
// below 1 are raised to 1.
func NewLRUCache[K comparable, V any](capacity int) *LRUCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*lruNode[K, V], capacity),
	}
}

// Get returns the cached value and true when key is present. A hit makes
// the entry the most recent one.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.head != n {
		c.unlink(n)
		c.pushFront(n)
	}
	return n.value, true
}

// Put inserts or updates key. At capacity the least recent entry makes
// room first.
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		n.value = value
		if c.head != n {
			c.unlink(n)
			c.pushFront(n)
		}
		return
	}

	if len(c.items) >= c.capacity {
		c.dropTail()
	}
	n := &lruNode[K, V]{key: key, value: value}
	c.items[key] = n
	c.pushFront(n)
}

// Evict removes key if present.
func (c *LRUCache[K, V]) Evict(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		c.unlink(n)
		delete(c.items, key)
	}
}

// Shed drops up to n least recent entries and reports how many were
// removed. The memory guard calls this when heap usage crosses its soft
// limit.
func (c *LRUCache[K, V]) Shed(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for dropped < n && c.tail != nil {
		c.dropTail()
		dropped++
	}
	return dropped
}

// Peek returns the cached value without touching recency.
func (c *LRUCache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Keys returns the cached keys in no particular order.
func (c *LRUCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of cached entries.
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Cap returns the configured capacity.
func (c *LRUCache[K, V]) Cap() int { return c.capacity }

// Clear drops every entry.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*lruNode[K, V], c.capacity)
	c.head, c.tail = nil, nil
}

// unlink removes n from the recency list. Caller holds mu.
func (c *LRUCache[K, V]) unlink(n *lruNode[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// pushFront makes n the most recent entry. Caller holds mu.
func (c *LRUCache[K, V]) pushFront(n *lruNode[K, V]) {
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// dropTail evicts the least recent entry. Caller holds mu.
func (c *LRUCache[K, V]) dropTail() {
	n := c.tail
	if n == nil {
		return
	}
	c.unlink(n)
	delete(c.items, n.key)
}
