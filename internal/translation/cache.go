package translation

import "sync"

// Route is one resolved relay hop.
type Route struct {
	From string
	To   string
}

func (r Route) String() string { return r.From + "->" + r.To }

// Cache memoizes relay results per (exact text, route). Implementations must
// be safe for concurrent use by every branch of a run. Empty results are
// valid entries.
type Cache interface {
	Get(text string, route Route) (string, bool)
	Put(text string, route Route, translated string)
}

type cacheKey struct {
	route Route
	text  string
}

// MemoryCache is an unbounded in-process Cache. Create one per run.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[cacheKey]string)}
}

func (c *MemoryCache) Get(text string, route Route) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[cacheKey{route: route, text: text}]
	return value, ok
}

func (c *MemoryCache) Put(text string, route Route, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{route: route, text: text}] = translated
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
