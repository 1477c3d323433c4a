// Package assets caches converted meshes and installs the files a
// conversion produces.
package assets

import (
	"sync"

	"github.com/Faultbox/urdf2iv/internal/meshconv"
)

// CachingConverter memoises conversions, so a mesh used by several visuals
// is imported once.
type CachingConverter struct {
	next  meshconv.Converter
	cache *Cache
}

// NewCachingConverter wraps next.
func NewCachingConverter(next meshconv.Converter) *CachingConverter {
	return &CachingConverter{
		next:  next,
		cache: NewCache(),
	}
}

// Convert implements meshconv.Converter. Failures are not cached.
func (c *CachingConverter) Convert(req meshconv.Request) (*meshconv.Result, error) {
	key := req.Key()
	if res, ok := c.cache.Get(key); ok {
		return res, nil
	}
	res, err := c.next.Convert(req)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, res)
	return res, nil
}

// Stats returns cache statistics.
func (c *CachingConverter) Stats() (hits, misses int) {
	return c.cache.Stats()
}

// Cache is a simple in-memory cache of converted meshes.
type Cache struct {
	data map[string]*meshconv.Result
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*meshconv.Result),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*meshconv.Result, bool) {
	// Stats are written, so a read lock is not enough.
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return res, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, res *meshconv.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = res
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*meshconv.Result)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
