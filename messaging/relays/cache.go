package relays

import (
	"github.com/sasha-s/go-deadlock"
)

// eventCache remembers the IDs of events already handed on, relays send the same event many times.
type eventCache struct {
	seen  map[string]struct{}
	mutex *deadlock.Mutex
}

func newEventCache() *eventCache {
	return &eventCache{seen: make(map[string]struct{}), mutex: &deadlock.Mutex{}}
}

// push reports whether id is new and remembers it.
func (c *eventCache) push(id string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.seen[id]; ok {
		return false
	}
	c.seen[id] = struct{}{}
	return true
}

func (c *eventCache) len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.seen)
}
