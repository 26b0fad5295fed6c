// Package cache holds the bounded caches shared by the analysis pipeline.
package cache

import "sync"

// LRU is a fixed-capacity map that evicts its least recently used entry when
// full. Safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu    sync.Mutex
	limit int
	index map[K]*node[K, V]
	// head.next is the most recent entry, head.prev the least recent
	head node[K, V]
}

type node[K comparable, V any] struct {
	key        K
	val        V
	prev, next *node[K, V]
}

// NewLRU returns a cache holding at most limit entries (minimum 1).
func NewLRU[K comparable, V any](limit int) *LRU[K, V] {
	c := &LRU[K, V]{limit: max(limit, 1), index: make(map[K]*node[K, V])}
	c.head.prev, c.head.next = &c.head, &c.head
	return c
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(n)
	c.pushFront(n)
	return n.val, true
}

func (c *LRU[K, V]) Put(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.index[key]; ok {
		n.val = val
		c.unlink(n)
		c.pushFront(n)
		return
	}
	if len(c.index) >= c.limit {
		oldest := c.head.prev
		c.unlink(oldest)
		delete(c.index, oldest.key)
	}
	n := &node[K, V]{key: key, val: val}
	c.index[key] = n
	c.pushFront(n)
}

// Remove drops key if present.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.index[key]; ok {
		c.unlink(n)
		delete(c.index, key)
	}
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *LRU[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (c *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = &c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}
