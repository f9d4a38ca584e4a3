package ophim

import (
	"sync"
	"time"
)

type cacheEntry struct {
	resp    *response
	expires time.Time
}

type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *cache) get(slug string) (*response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[slug]
	if !ok {
		return nil, false
	}
	if !time.Now().Before(entry.expires) {
		return nil, false
	}
	return entry.resp, true
}

func (c *cache) set(slug string, resp *response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[slug] = cacheEntry{
		resp:    resp,
		expires: time.Now().Add(c.ttl),
	}
}

// prune drops expired entries.
func (c *cache) prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	n := 0
	for slug, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, slug)
			n++
		}
	}
	return n
}
