package dummydb

import (
	"context"
	"sync"
	"time"

	"github.com/tutorbase/backend/core"
)

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is an in-memory core.Cache with per-key expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

var _ core.Cache = (*Cache)(nil) // interface compliance check

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return nil, core.ErrCacheMiss
	}
	return entry.data, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, expiry time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := cacheEntry{data: val}
	if expiry > 0 {
		entry.expiresAt = time.Now().Add(expiry)
	}
	c.entries[key] = entry
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}
