// Package collection edits collection membership on behalf of a user,
// resolving the user's default collection through a bounded cache.
package collection

import (
	"context"
	"fmt"
	"sync"

	"github.com/KruASe76/look/internal/core/storage"
	"github.com/KruASe76/look/internal/metrics"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultCollectionCache maps a user id to the id of their earliest-created
// collection. Entries are added only after a successful lookup and are never
// invalidated. At capacity the oldest inserted entry is evicted; reads do not
// affect eviction order.
type DefaultCollectionCache struct {
	store storage.CollectionStore

	mu      sync.Mutex
	entries *simplelru.LRU[int64, uuid.UUID]
}

// NewDefaultCollectionCache creates a cache holding at most capacity users.
func NewDefaultCollectionCache(store storage.CollectionStore, capacity int) (*DefaultCollectionCache, error) {
	entries, err := simplelru.NewLRU[int64, uuid.UUID](capacity, func(int64, uuid.UUID) {
		metrics.DefaultCollectionEvictions.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("default collection cache: %w", err)
	}
	return &DefaultCollectionCache{store: store, entries: entries}, nil
}

// GetOrResolve returns the user's default collection id, querying the store
// on a miss. It returns model.ErrNotFound when the user has no collections.
func (c *DefaultCollectionCache) GetOrResolve(ctx context.Context, userID int64) (uuid.UUID, error) {
	if id, ok := c.peek(userID); ok {
		metrics.DefaultCollectionLookups.WithLabelValues(metrics.ResultHit).Inc()
		return id, nil
	}
	metrics.DefaultCollectionLookups.WithLabelValues(metrics.ResultMiss).Inc()

	// The lock is not held across the query; two concurrent misses for the
	// same user both query and the first insert wins.
	id, err := c.store.EarliestCollectionID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.entries.Peek(userID); ok {
		return cached, nil
	}
	c.entries.Add(userID, id)
	return id, nil
}

// Len returns the number of cached users.
func (c *DefaultCollectionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Cached reports whether userID has an entry.
func (c *DefaultCollectionCache) Cached(userID int64) bool {
	_, ok := c.peek(userID)
	return ok
}

func (c *DefaultCollectionCache) peek(userID int64) (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Peek(userID)
}
