package meta

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KruASe76/look/internal/metrics"
	"github.com/KruASe76/look/pkg/model"
)

// Cache holds the last computed facet aggregate.
//
// Reads share a read lock and never wait on I/O once the cache is populated.
// Recomputations are serialized; the value is swapped under the write lock
// only after a recomputation succeeds, so a failure leaves the previous
// value in place.
type Cache struct {
	source Source
	logger *slog.Logger

	mu    sync.RWMutex
	value *model.SearchMeta

	// recomputing is a one-slot semaphore; unlike a mutex it can be abandoned
	// when the caller's context ends.
	recomputing chan struct{}
}

// NewCache creates an empty cache filled from source.
func NewCache(source Source) *Cache {
	return &Cache{
		source:      source,
		logger:      slog.Default().With("component", "meta-cache"),
		recomputing: make(chan struct{}, 1),
	}
}

// Get returns the cached aggregate. On an empty cache it waits for a
// recomputation in flight, or runs one itself.
// The returned value is shared and must not be modified.
func (c *Cache) Get(ctx context.Context) (model.SearchMeta, error) {
	if v, ok := c.load(); ok {
		return v, nil
	}

	if err := c.acquire(ctx); err != nil {
		return model.SearchMeta{}, err
	}
	defer c.release()

	// Populated while we waited.
	if v, ok := c.load(); ok {
		return v, nil
	}
	return c.recomputeLocked(ctx)
}

// Populated reports whether a value has been computed.
func (c *Cache) Populated() bool {
	_, ok := c.load()
	return ok
}

// Recompute computes a fresh aggregate and swaps it in.
func (c *Cache) Recompute(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	_, err := c.recomputeLocked(ctx)
	return err
}

func (c *Cache) recomputeLocked(ctx context.Context) (model.SearchMeta, error) {
	start := time.Now()
	v, err := c.source.Recompute(ctx)
	metrics.MetaRecomputeLatency.Observe(time.Since(start).Seconds())
	metrics.MetaRecomputations.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return model.SearchMeta{}, err
	}

	c.mu.Lock()
	c.value = &v
	c.mu.Unlock()

	c.logger.Debug("Search meta recomputed",
		"brands", len(v.Brands),
		"categories", len(v.Categories),
		"colors", len(v.Colors),
		"took", time.Since(start))
	return v, nil
}

func (c *Cache) load() (model.SearchMeta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil {
		return model.SearchMeta{}, false
	}
	return *c.value, true
}

func (c *Cache) acquire(ctx context.Context) error {
	select {
	case c.recomputing <- struct{}{}:
		return nil
	case <-ctx.Done():
		return model.WrapError(ctx.Err())
	}
}

func (c *Cache) release() {
	<-c.recomputing
}
