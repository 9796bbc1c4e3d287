package templates

import "sync"

// Cache memoizes registry lookups by exact URL for the lifetime of a run.
// Misses are cached too. There is no eviction: keys are bounded by the URLs
// one sweep visits.
type Cache struct {
	registry *Registry

	mu       sync.RWMutex
	lists    map[string]*ListTemplate
	contents map[string]*ContentTemplate
}

// NewCache wraps a registry.
func NewCache(registry *Registry) *Cache {
	return &Cache{
		registry: registry,
		lists:    make(map[string]*ListTemplate),
		contents: make(map[string]*ContentTemplate),
	}
}

// List resolves the list template for url.
func (c *Cache) List(url string) (ListTemplate, bool) {
	c.mu.RLock()
	t, hit := c.lists[url]
	c.mu.RUnlock()
	if !hit {
		if found, ok := c.registry.List(url); ok {
			t = &found
		}
		c.mu.Lock()
		c.lists[url] = t
		c.mu.Unlock()
	}
	if t == nil {
		return ListTemplate{}, false
	}
	return *t, true
}

// Content resolves the content template for url.
func (c *Cache) Content(url string) (ContentTemplate, bool) {
	c.mu.RLock()
	t, hit := c.contents[url]
	c.mu.RUnlock()
	if !hit {
		if found, ok := c.registry.Content(url); ok {
			t = &found
		}
		c.mu.Lock()
		c.contents[url] = t
		c.mu.Unlock()
	}
	if t == nil {
		return ContentTemplate{}, false
	}
	return *t, true
}

// Len returns the number of cached lookups.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lists) + len(c.contents)
}
