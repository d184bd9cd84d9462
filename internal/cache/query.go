// Package cache provides a short lived, in-memory memo keyed by arbitrary
// values with a caller supplied notion of equivalence.
package cache

import (
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 10 * time.Minute

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Query is a TTL bounded cache. Lookups scan the live entries using the
// installed comparator, so two keys that are equivalent share one slot.
// Expired entries are invisible to Has and Get; the underlying store also
// sweeps them periodically.
type Query[K comparable, V any] struct {
	mu      sync.RWMutex
	items   *gocache.Cache
	compare func(a, b K) bool
	slot    uint64
}

// New creates an empty cache that compares keys with ==.
func New[K comparable, V any]() *Query[K, V] {
	return &Query[K, V]{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// SetCompare installs the equivalence used by Has, Get and Set. Call it
// before the cache is shared.
func (q *Query[K, V]) SetCompare(fn func(a, b K) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.compare = fn
}

// Has reports whether a live entry equivalent to key exists.
func (q *Query[K, V]) Has(key K) bool {
	_, ok := q.Get(key)
	return ok
}

// Get returns the value stored under an equivalent, unexpired key.
func (q *Query[K, V]) Get(key K) (V, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if _, e, ok := q.find(key); ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Set stores value for ttl, replacing any equivalent entry. A non-positive
// ttl removes the equivalent entry instead.
func (q *Query[K, V]) Set(key K, value V, ttl time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	slot, _, ok := q.find(key)
	if ttl <= 0 {
		if ok {
			q.items.Delete(slot)
		}
		return
	}
	if !ok {
		q.slot++
		slot = strconv.FormatUint(q.slot, 10)
	}
	q.items.Set(slot, entry[K, V]{key: key, value: value}, ttl)
}

// Len returns the number of unexpired entries.
func (q *Query[K, V]) Len() int {
	return len(q.items.Items())
}

func (q *Query[K, V]) find(key K) (string, entry[K, V], bool) {
	for slot, item := range q.items.Items() {
		e, ok := item.Object.(entry[K, V])
		if !ok {
			continue
		}
		if q.equal(e.key, key) {
			return slot, e, true
		}
	}
	return "", entry[K, V]{}, false
}

func (q *Query[K, V]) equal(a, b K) bool {
	if q.compare != nil {
		return q.compare(a, b)
	}
	return a == b
}
