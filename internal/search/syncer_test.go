package search

import (
	"context"
	"testing"
	"time"

	storagetest "github.com/KruASe76/look/internal/core/storage/testing"
	"github.com/KruASe76/look/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedCatalog() []model.Product {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	products := catalog()
	for i := range products {
		products[i].UpdatedAt = base.Add(time.Duration(i) * time.Hour)
	}
	return products
}

func TestSync_SinceWatermark(t *testing.T) {
	products := timedCatalog()
	store := storagetest.NewMemoryCatalog(products...)
	idx := newIndex(t)
	syncer := NewSyncer(store, idx)

	n, err := syncer.Sync(context.Background(), products[2].UpdatedAt)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs := idx.Documents()
	assert.Len(t, docs, 2)
	assert.Contains(t, docs, products[2].ID.String())
	assert.Contains(t, docs, products[3].ID.String())
	assert.Equal(t, "Evening dress", docs[products[3].ID.String()].NameSuggest)
}

func TestSync_Idempotent(t *testing.T) {
	products := timedCatalog()
	store := storagetest.NewMemoryCatalog(products...)
	idx := newIndex(t)
	syncer := NewSyncer(store, idx)
	since := products[0].UpdatedAt

	first, err := syncer.Sync(context.Background(), since)
	require.NoError(t, err)
	snapshot := idx.Documents()

	second, err := syncer.Sync(context.Background(), since)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, len(products), second)
	assert.Equal(t, snapshot, idx.Documents())
}

func TestSync_StoreUnavailable(t *testing.T) {
	store := storagetest.NewMemoryCatalog(timedCatalog()...)
	store.FailWith("ProductsUpdatedSince", model.ErrUnavailable)
	idx := newIndex(t)

	n, err := NewSyncer(store, idx).Sync(context.Background(), time.Time{})
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.Zero(t, n)
	assert.Zero(t, idx.Len())
}

func TestSync_IndexUnavailable(t *testing.T) {
	store := storagetest.NewMemoryCatalog(timedCatalog()...)
	idx := newIndex(t)
	idx.FailWith(model.ErrUnavailable)

	n, err := NewSyncer(store, idx).Sync(context.Background(), time.Time{})
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.Zero(t, n)
}
