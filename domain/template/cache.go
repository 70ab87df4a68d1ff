package template

import (
	"sync"
	"time"
)

// listCache is the per-owner read cache for template lists. It is owned by
// the Store and invalidated explicitly on every mutation; a stale read
// inside the TTL window is an accepted trade-off, not a correctness
// mechanism.
type listCache struct {
	mu      sync.Mutex
	entries map[int64]listCacheEntry
	ttl     time.Duration
}

type listCacheEntry struct {
	templates []Template
	expiresAt time.Time
}

func newListCache(ttl time.Duration) *listCache {
	return &listCache{
		entries: make(map[int64]listCacheEntry),
		ttl:     ttl,
	}
}

func (c *listCache) get(ownerID int64) ([]Template, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[ownerID]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, ownerID)
		return nil, false
	}
	return entry.templates, true
}

func (c *listCache) set(ownerID int64, templates []Template) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[ownerID] = listCacheEntry{
		templates: templates,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// invalidate drops the cached list for one owner.
func (c *listCache) invalidate(ownerID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ownerID)
}
