package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KruASe76/look/internal/core/storage"
	"github.com/KruASe76/look/internal/metrics"
	"github.com/KruASe76/look/internal/search/index"
)

// Syncer pushes changed catalog records into the index.
type Syncer struct {
	store  storage.CatalogStore
	index  index.Index
	logger *slog.Logger
}

// NewSyncer creates a syncer reading from store and writing to idx.
func NewSyncer(store storage.CatalogStore, idx index.Index) *Syncer {
	return &Syncer{
		store:  store,
		index:  idx,
		logger: slog.Default().With("component", "syncer"),
	}
}

// Sync upserts every product updated at or after since and returns how many
// were written. Re-running with the same or an earlier watermark is harmless.
// Sync does not publish a facet invalidation; callers decide that.
//
// On failure the returned count is the number of documents written before it.
func (s *Syncer) Sync(ctx context.Context, since time.Time) (int, error) {
	products, err := s.store.ProductsUpdatedSince(ctx, since)
	if err != nil {
		metrics.SyncErrors.Inc()
		return 0, fmt.Errorf("sync: read products: %w", err)
	}

	synced := 0
	for _, p := range products {
		if err := s.index.Upsert(ctx, index.FromProduct(p)); err != nil {
			metrics.SyncErrors.Inc()
			metrics.DocumentsSynced.Add(float64(synced))
			return synced, fmt.Errorf("sync: upsert %s: %w", p.ID, err)
		}
		synced++
	}

	metrics.DocumentsSynced.Add(float64(synced))
	s.logger.Info("Synced products", "since", since, "count", synced)
	return synced, nil
}
