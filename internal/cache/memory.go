package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize is the entry limit of a memory cache created with size <= 0.
const DefaultSize = 256

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a bounded in-process LRU cache. The LRU itself never
// expires entries; each entry carries its own deadline, checked on Get.
type MemoryCache struct {
	size  int
	items *expirable.LRU[string, memoryEntry]
	now   func() time.Time
}

// NewMemoryCache creates an LRU cache holding at most size entries.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &MemoryCache{
		size:  size,
		items: expirable.NewLRU[string, memoryEntry](size, nil, 0),
		now:   time.Now,
	}
}

// Get returns a copy of the cached value and marks it recently used.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.items.Remove(key)
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Set stores data, evicting the least recently used entry when full.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.items.Add(key, e)
	return nil
}

// Delete removes key if present.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.items.Remove(key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	return c.items.Len()
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.items.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
