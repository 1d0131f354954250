// Package meta serves the facet aggregate (brands, categories, colors) from a
// process-local cache that is recomputed whenever any process broadcasts an
// invalidation.
package meta

import (
	"context"
	"fmt"

	"github.com/KruASe76/look/internal/core/storage"
	"github.com/KruASe76/look/pkg/model"
	"golang.org/x/sync/errgroup"
)

// Source computes a fresh facet aggregate.
type Source interface {
	Recompute(ctx context.Context) (model.SearchMeta, error)
}

// Recomputer builds the aggregate from the system of record.
type Recomputer struct {
	store storage.CatalogStore
}

var _ Source = (*Recomputer)(nil)

// NewRecomputer creates a recomputer reading from store.
func NewRecomputer(store storage.CatalogStore) *Recomputer {
	return &Recomputer{store: store}
}

// Recompute runs the three aggregate queries concurrently. If any fails the
// others are canceled and the first error is returned.
func (r *Recomputer) Recompute(ctx context.Context) (model.SearchMeta, error) {
	var meta model.SearchMeta
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		brands, err := r.store.DistinctBrands(gctx)
		if err != nil {
			return fmt.Errorf("brands: %w", err)
		}
		meta.Brands = brands
		return nil
	})
	g.Go(func() error {
		categories, err := r.store.DistinctCategories(gctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		meta.Categories = categories
		return nil
	})
	g.Go(func() error {
		colors, err := r.store.ColorCodes(gctx)
		if err != nil {
			return fmt.Errorf("colors: %w", err)
		}
		meta.Colors = colors
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.SearchMeta{}, fmt.Errorf("recompute search meta: %w", err)
	}

	if meta.Brands == nil {
		meta.Brands = []string{}
	}
	if meta.Categories == nil {
		meta.Categories = []string{}
	}
	if meta.Colors == nil {
		meta.Colors = map[string]string{}
	}
	return meta, nil
}
