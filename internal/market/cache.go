package market

import (
	"sync"
	"time"
)

// Clock returns the current time; injectable so tests are deterministic
type Clock func() time.Time

// Cache is a TTL, size-bounded cache for fetched market data. Entries past
// their TTL are treated as absent; when the cache is full the oldest entry
// is evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	clock   Clock
}

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
}

// NewCache creates a cache with the given TTL and size bound. A nil clock
// defaults to time.Now.
func NewCache(ttl time.Duration, maxSize int, clock Clock) *Cache {
	if clock == nil {
		clock = time.Now
	}
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		clock:   clock,
	}
}

// Get returns the cached value for key if it is still within TTL
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.clock().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value under key, evicting the oldest entry when full
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = cacheEntry{
		value:    value,
		storedAt: c.clock(),
	}
}

// Len returns the number of entries currently held, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
