package archive

import (
	"container/list"
	"sync"
)

// probeCache remembers URLs that a HEAD probe has confirmed to exist.
// Archive objects are immutable once published, so a positive answer never
// goes stale; negative answers are deliberately not stored. Thread-safe,
// LRU-bounded.
type probeCache struct {
	maxEntries int

	mu      sync.Mutex
	order   *list.List               // front = most recently used
	entries map[string]*list.Element // value: url string
}

func newProbeCache(maxEntries int) *probeCache {
	return &probeCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// hasPositive reports whether url has a cached positive probe.
func (c *probeCache) hasPositive(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[url]
	if !ok {
		return false
	}
	c.order.MoveToFront(elem)
	return true
}

// markPositive records a confirmed-existing URL, evicting the least
// recently used entry when full.
func (c *probeCache) markPositive(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[url]; ok {
		c.order.MoveToFront(elem)
		return
	}

	c.entries[url] = c.order.PushFront(url)

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(string))
	}
}
