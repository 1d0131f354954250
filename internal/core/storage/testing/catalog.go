// Package testing provides in-memory stores for tests of code that reads the
// catalog or edits collections.
package testing

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/KruASe76/look/internal/core/storage/types"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
)

// MemoryCatalog is a CatalogStore over a product map. It counts calls per
// method and can fail or block selected methods.
type MemoryCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]model.Product
	calls    map[string]int
	errs     map[string]error
	gate     chan struct{}
}

var _ types.CatalogStore = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates a catalog holding products.
func NewMemoryCatalog(products ...model.Product) *MemoryCatalog {
	c := &MemoryCatalog{
		products: make(map[uuid.UUID]model.Product),
		calls:    make(map[string]int),
		errs:     make(map[string]error),
	}
	c.Put(products...)
	return c
}

// Put inserts or replaces products.
func (c *MemoryCatalog) Put(products ...model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range products {
		c.products[p.ID] = p
	}
}

// Delete removes a product.
func (c *MemoryCatalog) Delete(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
}

// FailWith makes method return err until cleared with a nil err.
func (c *MemoryCatalog) FailWith(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.errs, method)
		return
	}
	c.errs[method] = err
}

// Gate makes the aggregate queries wait until gate is closed or the
// context ends. A nil gate removes the wait.
func (c *MemoryCatalog) Gate(gate chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = gate
}

// Calls returns how many times method was invoked.
func (c *MemoryCatalog) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *MemoryCatalog) enter(ctx context.Context, method string, gated bool) error {
	c.mu.Lock()
	c.calls[method]++
	err := c.errs[method]
	gate := c.gate
	c.mu.Unlock()

	if gated && gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (c *MemoryCatalog) snapshot() []model.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b model.Product) int {
		if n := a.UpdatedAt.Compare(b.UpdatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func (c *MemoryCatalog) ProductsUpdatedSince(ctx context.Context, since time.Time) ([]model.Product, error) {
	if err := c.enter(ctx, "ProductsUpdatedSince", false); err != nil {
		return nil, err
	}
	var out []model.Product
	for _, p := range c.snapshot() {
		if !p.UpdatedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *MemoryCatalog) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if err := c.enter(ctx, "ProductsByIDs", false); err != nil {
		return nil, err
	}
	var out []model.Product
	for _, p := range c.snapshot() {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *MemoryCatalog) DistinctBrands(ctx context.Context) ([]string, error) {
	if err := c.enter(ctx, "DistinctBrands", true); err != nil {
		return nil, err
	}
	return c.distinct(func(p model.Product) string { return p.Brand }), nil
}

func (c *MemoryCatalog) DistinctCategories(ctx context.Context) ([]string, error) {
	if err := c.enter(ctx, "DistinctCategories", true); err != nil {
		return nil, err
	}
	return c.distinct(func(p model.Product) string { return p.Category }), nil
}

func (c *MemoryCatalog) ColorCodes(ctx context.Context) (map[string]string, error) {
	if err := c.enter(ctx, "ColorCodes", true); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, p := range c.snapshot() {
		if code, ok := out[p.ColorName]; !ok || p.ColorCode < code {
			out[p.ColorName] = p.ColorCode
		}
	}
	return out, nil
}

func (c *MemoryCatalog) distinct(field func(model.Product) string) []string {
	var out []string
	for _, p := range c.snapshot() {
		out = append(out, field(p))
	}
	slices.Sort(out)
	return slices.Compact(out)
}
