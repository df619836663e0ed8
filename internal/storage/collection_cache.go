package storage

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadFunc reads the question numbers of one collection from its backing table.
type LoadFunc func(ctx context.Context, id int) ([]string, error)

// CollectionCache provides in-memory storage for collection indexes by collection ID.
// Concurrent first reads of the same collection share a single load.
type CollectionCache struct {
	mu      sync.RWMutex
	indexes map[int][]string
	group   singleflight.Group
	load    LoadFunc
}

// NewCollectionCache creates a new CollectionCache backed by load.
func NewCollectionCache(load LoadFunc) *CollectionCache {
	return &CollectionCache{
		indexes: make(map[int][]string),
		load:    load,
	}
}

// Get returns the cached index for id, loading it on first access.
// Failed loads are not cached.
func (c *CollectionCache) Get(ctx context.Context, id int) ([]string, error) {
	if ids, ok := c.lookup(id); ok {
		return ids, nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(id), func() (any, error) {
		if ids, ok := c.lookup(id); ok {
			return ids, nil
		}

		ids, err := c.load(ctx, id)
		if err != nil {
			return nil, err
		}

		c.Store(id, ids)
		return ids, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]string), nil
}

// Store saves the index for a given collection ID.
func (c *CollectionCache) Store(id int, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[id] = ids
}

// Len returns the number of cached collections.
func (c *CollectionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.indexes)
}

func (c *CollectionCache) lookup(id int) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids, ok := c.indexes[id]
	return ids, ok
}
