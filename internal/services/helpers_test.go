package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/KruASe76/look/internal/config"
	pubsubconfig "github.com/KruASe76/look/internal/core/pubsub/config"
	"github.com/KruASe76/look/internal/core/storage"
	storagetest "github.com/KruASe76/look/internal/core/storage/testing"
	"github.com/KruASe76/look/internal/search/index"
	"github.com/KruASe76/look/internal/search/index/memindex"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
)

type fakeStorageFactory struct {
	catalog     *storagetest.MemoryCatalog
	collections *storagetest.MemoryCollections
	closed      atomic.Int32
}

func (f *fakeStorageFactory) Catalog() storage.CatalogStore { return f.catalog }
func (f *fakeStorageFactory) Collections() storage.CollectionStore { return f.collections }
func (f *fakeStorageFactory) Close() error {
	f.closed.Add(1)
	return nil
}

func product(brand, category, color, code string) model.Product {
	return model.Product{
		ID:        uuid.New(),
		Article:   "A-" + brand,
		Name:      category + " by " + brand,
		Brand:     brand,
		Category:  category,
		ColorName: color,
		ColorCode: code,
	}
}

// testConfig returns defaults with an in-process bus.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.PubSub.Transport = pubsubconfig.TransportMemory
	cfg.Server.HTTPPort = 0
	return cfg
}

// withFakes swaps the injectable factories for in-memory versions for the
// duration of the test.
func withFakes(t *testing.T) (*fakeStorageFactory, *memindex.Index) {
	t.Helper()

	sf := &fakeStorageFactory{
		catalog: storagetest.NewMemoryCatalog(
			product("Zara", "dress", "red", "#ff0000"),
			product("Mango", "coat", "black", "#000000"),
		),
		collections: storagetest.NewMemoryCollections(),
	}
	idx := memindex.New(nil)

	origStorage, origIndex := storageFactoryFactory, indexFactory
	storageFactoryFactory = func(ctx context.Context, cfg *config.Config) (storage.StorageFactory, error) {
		return sf, nil
	}
	indexFactory = func(cfg *config.Config) (index.Index, error) {
		return idx, nil
	}
	t.Cleanup(func() {
		storageFactoryFactory, indexFactory = origStorage, origIndex
	})
	return sf, idx
}
