// Package cache is the in-memory, fixed-TTL store that memoizes resolved
// video metadata. Entries expire on their own; the only shared mutable state
// in the service lives here, behind a RWMutex.
package cache

import (
	"sync"
	"time"

	"github.com/grabtok/grabtok/internal/models"
)

type entry struct {
	value     *models.VideoMetadata
	expiresAt time.Time
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	hits    uint64
	misses  uint64
	stop    chan struct{}
	once    sync.Once
}

// New builds a cache with the given TTL and starts the background expiry
// sweep at TTL/5 intervals. Close must be called to stop the sweeper.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go c.sweep(ttl / 5)
	return c
}

func (c *Cache) sweep(interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// Get returns the cached record for the key, counting a hit or a miss.
// Expired entries count as misses even before the sweeper removes them.
func (c *Cache) Get(key string) (*models.VideoMetadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Set stores the record under the key; an existing entry is replaced, never
// mutated in place.
func (c *Cache) Set(key string, value *models.VideoMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// FlushAll removes every entry. Test and ops use only; counters survive.
func (c *Cache) FlushAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats returns a counter snapshot for the health surface. Counters are
// never reset.
func (c *Cache) Stats() models.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.CacheStats{
		Hits:   c.hits,
		Misses: c.misses,
		Keys:   len(c.entries),
	}
}

// Close stops the background sweeper.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}
