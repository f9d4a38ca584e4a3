package listing

import (
	"sync"

	"github.com/vmunix/phimgo/internal/docstore"
)

// PageCache maps a page number to the cursor returned by that page, which
// is where the next page starts. It is safe for concurrent use.
type PageCache struct {
	mu         sync.RWMutex
	cursors    map[int]*docstore.Cursor
	generation uint64
}

// NewPageCache creates an empty cache.
func NewPageCache() *PageCache {
	return &PageCache{cursors: make(map[int]*docstore.Cursor)}
}

// Record stores the cursor returned by page. Recording a page again overwrites it.
func (c *PageCache) Record(page int, cursor *docstore.Cursor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursors[page] = cursor
}

// RecordIf records only when no Invalidate happened since generation was read,
// so a fetch that raced a filter change cannot repopulate the cache.
func (c *PageCache) RecordIf(generation uint64, page int, cursor *docstore.Cursor) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	c.cursors[page] = cursor
	return true
}

// CursorFor returns the cursor to start page at: the one recorded for page-1.
// Page 1 and pages whose predecessor was never fetched return nil.
func (c *PageCache) CursorFor(page int) *docstore.Cursor {
	if page <= 1 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cursors[page-1]
}

// NearestIf returns the highest recorded page at or below page and its
// cursor. It returns 0 and nil when nothing qualifies or when the cache was
// invalidated since generation was read.
func (c *PageCache) NearestIf(generation uint64, page int) (int, *docstore.Cursor) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.generation != generation {
		return 0, nil
	}
	best := 0
	for p, cur := range c.cursors {
		if p <= page && p > best && cur != nil {
			best = p
		}
	}
	return best, c.cursors[best]
}

// Invalidate clears every entry.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.cursors)
	c.generation++
}

// Generation changes on every Invalidate.
func (c *PageCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cursors)
}
