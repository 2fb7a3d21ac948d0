package commentary

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes generated commentary for the most recent prediction, keyed
// by audience and locale. Concurrent requests for the same key share one
// generation. Reset clears it when a new prediction arrives.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
	group   singleflight.Group
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

func cacheKey(audience Audience, locale string) string {
	return string(audience) + "|" + locale
}

// GetOrGenerate returns the cached commentary for the key, generating and
// storing it on a miss. At most one generation per key runs at a time.
func (c *Cache) GetOrGenerate(ctx context.Context, g *Generator, in Input) string {
	key := cacheKey(in.Audience, in.Locale)

	c.mu.RLock()
	text, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return text
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		out := g.Generate(ctx, in)
		c.mu.Lock()
		c.entries[key] = out
		c.mu.Unlock()
		return out, nil
	})
	return v.(string)
}

// Put stores commentary directly, used when a handler regenerates on demand.
func (c *Cache) Put(audience Audience, locale, text string) {
	c.mu.Lock()
	c.entries[cacheKey(audience, locale)] = text
	c.mu.Unlock()
}

// Reset drops all cached variants. Call on every new prediction.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.mu.Unlock()
}

// Len reports the number of cached variants.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
