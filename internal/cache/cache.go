// Package cache stores rendered tree layouts keyed by source checksum.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted in configuration.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and sizes a cache backend.
type Options struct {
	Backend string
	Size    int
	Redis   RedisOptions
}

// New builds the cache named by opts.Backend. An empty backend means memory.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case "", BackendMemory:
		return NewMemoryCache(opts.Size), nil
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", opts.Backend)
	}
}
