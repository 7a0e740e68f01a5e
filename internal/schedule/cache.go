package schedule

import (
	gocache "github.com/patrickmn/go-cache"
)

// Cache holds fully resolved schedules keyed by id. Entries never expire
// on their own; eviction is explicit and happens when the active schedule
// identity changes, so switched-away projects cannot be served stale
// schedules.
type Cache struct {
	entries *gocache.Cache
}

// NewCache returns an empty schedule cache.
func NewCache() *Cache {
	return &Cache{entries: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the cached schedule for id, if any.
func (c *Cache) Get(id string) (*Schedule, bool) {
	value, found := c.entries.Get(id)
	if !found {
		return nil, false
	}
	sched, ok := value.(*Schedule)
	return sched, ok
}

// Put stores a resolved schedule. Schedules without an id are not cached.
func (c *Cache) Put(sched *Schedule) {
	if sched == nil || sched.ID == "" {
		return
	}
	c.entries.Set(sched.ID, sched, gocache.NoExpiration)
}

// Clear removes every entry except the one matching keeping. An empty
// keeping id empties the cache.
func (c *Cache) Clear(keeping string) {
	for id := range c.entries.Items() {
		if id != keeping {
			c.entries.Delete(id)
		}
	}
}

// Len returns the number of cached schedules.
func (c *Cache) Len() int {
	return c.entries.ItemCount()
}
