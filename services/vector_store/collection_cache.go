package vector_store

import (
	"context"
	"sync"
)

// CollectionCache memoizes collection name to id lookups. It is owned by the
// store instance it is injected into, never a package global, so tests can
// hand every store a fresh cache.
//
// Get-or-create is safe under interleaved requests: the first writer wins and
// later lookups reuse its result. The create function itself must be
// idempotent (the pg implementation uses INSERT ... ON CONFLICT), so a rare
// duplicate creation race across processes resolves to the same row.
type CollectionCache struct {
	mu  sync.Mutex
	ids map[string]string
}

func NewCollectionCache() *CollectionCache {
	return &CollectionCache{ids: make(map[string]string)}
}

// GetOrCreate returns the cached id for name, calling create at most once
// per uncached name within this process.
func (c *CollectionCache) GetOrCreate(ctx context.Context, name string, create func(ctx context.Context, name string) (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.ids[name]; ok {
		return id, nil
	}

	id, err := create(ctx, name)
	if err != nil {
		return "", err
	}
	c.ids[name] = id
	return id, nil
}

// Invalidate drops a cached handle, forcing the next lookup to hit the store.
func (c *CollectionCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, name)
}
