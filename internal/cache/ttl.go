package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	payload  V
	storedAt time.Time
	expireAt int64 // unix nano
}

// TTL is a freshness-bounded map. Get only returns entries inside the
// freshness window; GetStale also returns expired last-good payloads so the
// orchestrator can degrade gracefully when a fresh resolution fails.
type TTL[K comparable, V any] struct {
	ttl     time.Duration
	mu      sync.RWMutex
	items   map[K]entry[V]
	stopCh  chan struct{}
	stopped bool
}

// ttl - freshness window for Get;
// janitorEvery - how often expired entries are reaped; 0 -> no janitor
func New[K comparable, V any](ttl, janitorEvery time.Duration) *TTL[K, V] {
	c := &TTL[K, V]{
		ttl:    ttl,
		items:  make(map[K]entry[V], 16),
		stopCh: make(chan struct{}),
	}

	if janitorEvery > 0 {
		go c.janitor(janitorEvery)
	}

	return c
}

// Get returns the payload if present and still fresh.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || e.expireAt <= time.Now().UnixNano() {
		var zero V
		return zero, false
	}
	return e.payload, true
}

// GetStale returns the payload even after expiry, with the time it was
// stored. Expired entries survive until overwritten or reaped by the
// janitor, so keep janitorEvery at 0 for caches used as last-good fallback.
func (c *TTL[K, V]) GetStale(key K) (V, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, time.Time{}, false
	}
	return e.payload, e.storedAt, true
}

// Put unconditionally overwrites.
func (c *TTL[K, V]) Put(key K, v V) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{
		payload:  v,
		storedAt: now,
		expireAt: now.Add(c.ttl).UnixNano(),
	}
}

func (c *TTL[K, V]) Evict(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *TTL[K, V]) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-t.C:
			now := time.Now().UnixNano()
			c.mu.Lock()
			for k, e := range c.items {
				if e.expireAt <= now {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the janitor (if running). Idempotent.
func (c *TTL[K, V]) Close() {
	c.mu.Lock()
	if !c.stopped {
		close(c.stopCh)
		c.stopped = true
	}
	c.mu.Unlock()
}
