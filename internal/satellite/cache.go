package satellite

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// cacheEntry holds one cached fetch result.
type cacheEntry struct {
	evidence  *Evidence
	expiresAt time.Time
}

func (e *cacheEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// CachingProvider wraps another Provider with a thread-safe in-memory TTL
// cache keyed by rounded location and image size. Reference imagery for a
// location changes on the order of days, so short-lived reuse is safe.
type CachingProvider struct {
	inner Provider
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

// NewCachingProvider wraps inner with a TTL cache. A non-positive ttl
// disables caching entirely.
func NewCachingProvider(inner Provider, ttl time.Duration) *CachingProvider {
	return &CachingProvider{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// Fetch implements Provider.
func (c *CachingProvider) Fetch(ctx context.Context, lat, lon float64, size int, cloudThreshold float64) (*Evidence, error) {
	if c.ttl <= 0 {
		return c.inner.Fetch(ctx, lat, lon, size, cloudThreshold)
	}

	key := cacheKey(lat, lon, size)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !e.expired() {
		return e.evidence, nil
	}

	ev, err := c.inner.Fetch(ctx, lat, lon, size, cloudThreshold)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{evidence: ev, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return ev, nil
}

// Evict removes all expired entries and returns how many were dropped.
func (c *CachingProvider) Evict() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if e.expired() {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of cached entries (including expired).
func (c *CachingProvider) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey rounds coordinates to ~11m so nearby requests share an entry.
func cacheKey(lat, lon float64, size int) string {
	return fmt.Sprintf("%.4f:%.4f:%d", lat, lon, size)
}
