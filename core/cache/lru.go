package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // zero when the cache has no TTL
}

// LRUCache is a thread-safe, fixed-capacity cache with least-recently-used
// eviction and optional per-entry expiry.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[K]*list.Element
	order    *list.List // front is most recently used
	onEvict  func(key K, value V)

	sweeping  bool
	stop      chan struct{}
	closeOnce sync.Once
}

// Option configures an LRUCache.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL sets the lifetime of every entry, counted from its last Put.
// Zero disables expiry and the background sweep.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewLRUCache creates a cache holding at most capacity entries.
// It panics if capacity is not positive.
func NewLRUCache[K comparable, V any](capacity int, opts ...Option) *LRUCache[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &LRUCache[K, V]{
		capacity: capacity,
		ttl:      o.ttl,
		now:      o.now,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		stop:     make(chan struct{}),
	}
}

// SetEvictCallback registers fn to run for every entry dropped because of
// capacity or expiry. It is not called for Remove, Clear or replaced values.
func (c *LRUCache[K, V]) SetEvictCallback(fn func(key K, value V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and marks it most recently used.
// An expired entry is removed and reported as a miss.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		var zero V
		return zero, false
	}

	e := el.Value.(*entry[K, V])
	if c.expired(e, c.now()) {
		c.removeElement(el)
		cb := c.onEvict
		c.mu.Unlock()
		if cb != nil {
			cb(e.key, e.value)
		}
		var zero V
		return zero, false
	}

	c.order.MoveToFront(el)
	c.mu.Unlock()
	return e.value, true
}

// Put stores value under key. An existing key is replaced and its expiry
// restamped; a new key at capacity evicts the least recently used entry first.
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()

	if !c.sweeping && c.ttl > 0 {
		c.sweeping = true
		go c.sweep()
	}

	now := c.now()
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return
	}

	var evicted []*entry[K, V]
	if c.order.Len() >= c.capacity {
		if back := c.order.Back(); back != nil {
			evicted = append(evicted, c.removeElement(back))
		}
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, expiresAt: expiresAt})
	cb := c.onEvict
	c.mu.Unlock()

	if cb != nil {
		for _, e := range evicted {
			cb(e.key, e.value)
		}
	}
}

// Remove deletes key and returns its value if it was present and live.
// An entry that had already expired counts as an expiration, like in Get:
// the evict callback fires and Remove reports a miss. Removing a live entry
// is explicit and does not fire the callback.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	e := c.removeElement(el)
	if !c.expired(e, c.now()) {
		c.mu.Unlock()
		return e.value, true
	}
	cb := c.onEvict
	c.mu.Unlock()

	if cb != nil {
		cb(e.key, e.value)
	}
	return zero, false
}

// Len returns the number of stored entries, including expired entries not
// yet swept.
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all entries without invoking the evict callback.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
}

// Purge removes every expired entry and returns how many were dropped.
func (c *LRUCache[K, V]) Purge() int {
	c.mu.Lock()
	now := c.now()
	var expired []*entry[K, V]
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if e := el.Value.(*entry[K, V]); c.expired(e, now) {
			expired = append(expired, c.removeElement(el))
		}
		el = prev
	}
	cb := c.onEvict
	c.mu.Unlock()

	if cb != nil {
		for _, e := range expired {
			cb(e.key, e.value)
		}
	}
	return len(expired)
}

// Close stops the background sweep. It is safe to call more than once; the
// cache stays usable but expired entries are then only dropped lazily.
func (c *LRUCache[K, V]) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *LRUCache[K, V]) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}

func (c *LRUCache[K, V]) expired(e *entry[K, V], now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (c *LRUCache[K, V]) removeElement(el *list.Element) *entry[K, V] {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.items, e.key)
	return e
}
