// Package lru implements the bounded key->slot store backing the cache.
//
// A hashmap addresses slots in O(1); the slots themselves form a circular
// doubly linked list anchored at a sentinel so recency bumps and evictions
// are pointer swaps. root.next is the least recently used slot, root.prev the
// most recently used one. When the repository is full, Add reuses the oldest
// slot instead of allocating.
package lru

// Repository is a bounded LRU map. It is not safe for concurrent use; the
// owning cache serializes structural access.
type Repository[K comparable, V any] struct {
	items   map[K]*node[K, V]
	root    *node[K, V]
	maxSize int
	bounded bool
	full    bool
}

type node[K comparable, V any] struct {
	prev, next *node[K, V]
	key        K
	value      V
}

// New returns a repository. bounded=false ignores maxSize entirely (plain map
// semantics, no eviction). bounded=true with maxSize 0 rejects every insert.
func New[K comparable, V any](maxSize int, bounded bool) *Repository[K, V] {
	r := &Repository[K, V]{
		items:   make(map[K]*node[K, V]),
		maxSize: maxSize,
		bounded: bounded,
	}
	r.root = &node[K, V]{}
	r.root.prev = r.root
	r.root.next = r.root
	return r
}

// Add inserts value at the most-recently-used end. If the repository is at
// capacity the oldest slot is reused and its entry returned. Inserting an
// existing key is a no-op. A bounded repository with maxSize 0 never inserts.
func (r *Repository[K, V]) Add(key K, value V) (evictedKey K, evictedValue V, evicted bool) {
	if r.bounded && r.maxSize == 0 {
		return evictedKey, evictedValue, false
	}
	if _, ok := r.items[key]; ok {
		return evictedKey, evictedValue, false
	}
	if r.full {
		// reuse the oldest slot: overwrite in place, then bump to the MRU end
		oldest := r.root.next
		evictedKey, evictedValue, evicted = oldest.key, oldest.value, true
		delete(r.items, oldest.key)
		oldest.key = key
		oldest.value = value
		r.unlink(oldest)
		r.pushBack(oldest)
		r.items[key] = oldest
		return evictedKey, evictedValue, evicted
	}
	n := &node[K, V]{key: key, value: value}
	r.pushBack(n)
	r.items[key] = n
	r.full = r.bounded && len(r.items) >= r.maxSize
	return evictedKey, evictedValue, false
}

// AddNoAdjust inserts without recency bookkeeping beyond appending the node.
// Meant for uncapped repositories where order never matters.
func (r *Repository[K, V]) AddNoAdjust(key K, value V) {
	if r.bounded && r.maxSize == 0 {
		return
	}
	if _, ok := r.items[key]; ok {
		return
	}
	n := &node[K, V]{key: key, value: value}
	r.pushBack(n)
	r.items[key] = n
	r.full = r.bounded && len(r.items) >= r.maxSize
}

// Get returns the value for key and moves its slot to the MRU end.
func (r *Repository[K, V]) Get(key K) (V, bool) {
	n, ok := r.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	r.unlink(n)
	r.pushBack(n)
	return n.value, true
}

// GetNoAdjust returns the value for key without touching recency order.
func (r *Repository[K, V]) GetNoAdjust(key K) (V, bool) {
	n, ok := r.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	return n.value, true
}

func (r *Repository[K, V]) Has(key K) bool {
	_, ok := r.items[key]
	return ok
}

// Remove deletes key and returns its value.
func (r *Repository[K, V]) Remove(key K) (V, bool) {
	n, ok := r.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	r.unlink(n)
	delete(r.items, key)
	r.full = false
	return n.value, true
}

// Filter removes every entry for which keep returns false and returns the
// removed values. Used by expiry sweeps.
func (r *Repository[K, V]) Filter(keep func(key K, value V) bool) []V {
	var removed []V
	for n := r.root.next; n != r.root; {
		next := n.next
		if !keep(n.key, n.value) {
			r.unlink(n)
			delete(r.items, n.key)
			removed = append(removed, n.value)
		}
		n = next
	}
	if len(removed) > 0 {
		r.full = r.bounded && r.maxSize != 0 && len(r.items) >= r.maxSize
	}
	return removed
}

// Every visits all entries in LRU-to-MRU order.
func (r *Repository[K, V]) Every(fn func(key K, value V)) {
	for n := r.root.next; n != r.root; n = n.next {
		fn(n.key, n.value)
	}
}

// Clear drops all entries.
func (r *Repository[K, V]) Clear() {
	r.items = make(map[K]*node[K, V])
	r.root.prev = r.root
	r.root.next = r.root
	r.full = false
}

func (r *Repository[K, V]) Len() int { return len(r.items) }

func (r *Repository[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (r *Repository[K, V]) pushBack(n *node[K, V]) {
	last := r.root.prev
	n.prev = last
	n.next = r.root
	last.next = n
	r.root.prev = n
}
