package sound

import (
	"container/list"
)

// DefaultCacheCapacity bounds the default canonicalization cache.
const DefaultCacheCapacity = 256

// Cache is a bounded strict-LRU map from a stable identity key to a
// canonicalized PCM buffer. It prevents repeated resampling and conversion
// of the same source. The zero value is not usable; use NewCache.
//
// The cache is confined to the control thread and takes no locks.
type Cache struct {
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key string
	pcm *PCM
}

// NewCache creates a cache holding at most capacity entries; capacity <= 0
// selects DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Canonical returns the canonicalized form of the sound identified by key,
// computing it via gen on a miss. A hit refreshes the entry's recency.
func (c *Cache) Canonical(key string, rate int, gen func() (*Sound, error)) (*PCM, error) {
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).pcm, nil
	}

	s, err := gen()
	if err != nil {
		return nil, err
	}
	pcm, err := Canonicalize(s, rate)
	if err != nil {
		return nil, err
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, pcm: pcm})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return pcm, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return c.order.Len() }

// Flush drops every entry. Called whenever the engine is reconfigured,
// since a new output rate invalidates every canonicalization.
func (c *Cache) Flush() {
	c.order.Init()
	clear(c.entries)
}
