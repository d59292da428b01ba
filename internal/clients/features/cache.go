package features

import (
	"sync"
	"time"

	"github.com/clearroute/tripmap/internal/lib/proximity"
)

// snapshotCache holds the last fetched collection per category with a TTL,
// so rapid re-annotation triggers reuse the same input snapshot instead of
// refetching feeds that change daily.
type snapshotCache struct {
	entries map[proximity.Category]snapshotEntry
	mutex   sync.RWMutex
}

type snapshotEntry struct {
	features  []proximity.Feature
	expiresAt time.Time
}

func newSnapshotCache() *snapshotCache {
	return &snapshotCache{
		entries: make(map[proximity.Category]snapshotEntry),
	}
}

// get returns the cached collection if present and fresh
func (c *snapshotCache) get(category proximity.Category) ([]proximity.Feature, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[category]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.features, true
}

// set stores a collection with the given TTL
func (c *snapshotCache) set(category proximity.Category, features []proximity.Feature, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[category] = snapshotEntry{
		features:  features,
		expiresAt: time.Now().Add(ttl),
	}
}

// invalidate drops a category's snapshot
func (c *snapshotCache) invalidate(category proximity.Category) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, category)
}

// Invalidate drops the cached snapshot for a category, forcing the next
// FetchCategory to hit the feed
func (p *FeedParser) Invalidate(category proximity.Category) {
	p.cache.invalidate(category)
}
