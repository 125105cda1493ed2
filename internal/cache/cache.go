// Package cache holds the process-wide mapping from entry key to the
// last applied value. It is the source of truth for synchronous reads:
// an entry always reflects the most recently applied value, whether
// from a confirmed load, a local write, or an external notification.
// There is no eviction; entries live for the process lifetime.
package cache

import "sync"

// Cache is a concurrency-safe key/value map.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: map[string]interface{}{}}
}

// Get returns the last applied value for key, if any.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set unconditionally overwrites the value for key.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
}

// Delete removes the entry for key, if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
