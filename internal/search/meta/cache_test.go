package meta

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KruASe76/look/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetBlocksUntilPopulated(t *testing.T) {
	store := seededCatalog()
	gate := make(chan struct{})
	store.Gate(gate)
	cache := NewCache(NewRecomputer(store))

	const readers = 5
	results := make(chan model.SearchMeta, readers)
	var wg sync.WaitGroup
	for range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results <- v
		}()
	}

	require.Eventually(t, func() bool { return store.Calls("DistinctBrands") == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, cache.Populated())
	assert.Empty(t, results)

	close(gate)
	wg.Wait()
	close(results)

	for v := range results {
		assert.NotEmpty(t, v.Brands)
		assert.NotEmpty(t, v.Colors)
	}
	assert.Equal(t, 1, store.Calls("DistinctBrands"), "concurrent readers share one recomputation")
}

func TestCache_GetIsStable(t *testing.T) {
	store := seededCatalog()
	cache := NewCache(NewRecomputer(store))

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Calls("DistinctCategories"))
}

func TestCache_RecomputeReflectsStore(t *testing.T) {
	store := seededCatalog()
	cache := NewCache(NewRecomputer(store))
	require.NoError(t, cache.Recompute(context.Background()))

	store.Put(product("Uniqlo", "hoodie", "grey", "#808080"))

	before, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, before.Brands, "Uniqlo")

	require.NoError(t, cache.Recompute(context.Background()))
	after, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Contains(t, after.Brands, "Uniqlo")
	assert.Equal(t, "#808080", after.Colors["grey"])
	assert.NotContains(t, before.Brands, "Uniqlo", "earlier values are never mutated")
}

func TestCache_FailureKeepsStaleValue(t *testing.T) {
	store := seededCatalog()
	cache := NewCache(NewRecomputer(store))
	populated, err := cache.Get(context.Background())
	require.NoError(t, err)

	store.FailWith("DistinctBrands", model.ErrUnavailable)
	assert.ErrorIs(t, cache.Recompute(context.Background()), model.ErrUnavailable)

	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, populated, v)
}

func TestCache_GetOnEmptyFailure(t *testing.T) {
	store := seededCatalog()
	store.FailWith("DistinctCategories", model.ErrUnavailable)
	cache := NewCache(NewRecomputer(store))

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.False(t, cache.Populated())

	store.FailWith("DistinctCategories", nil)
	_, err = cache.Get(context.Background())
	assert.NoError(t, err)
	assert.True(t, cache.Populated())
}

func TestCache_GetCanceledWhileWaiting(t *testing.T) {
	store := seededCatalog()
	gate := make(chan struct{})
	store.Gate(gate)
	cache := NewCache(NewRecomputer(store))

	go func() { _ = cache.Recompute(context.Background()) }()
	require.Eventually(t, func() bool { return store.Calls("ColorCodes") == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, model.ErrCanceled)

	close(gate)
	require.Eventually(t, cache.Populated, time.Second, 5*time.Millisecond)
}
