package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KruASe76/look/internal/collection"
	"github.com/KruASe76/look/internal/config"
	"github.com/KruASe76/look/internal/core/pubsub"
	pubsubconfig "github.com/KruASe76/look/internal/core/pubsub/config"
	"github.com/KruASe76/look/internal/core/pubsub/memory"
	natsbus "github.com/KruASe76/look/internal/core/pubsub/nats"
	pgbus "github.com/KruASe76/look/internal/core/pubsub/postgres"
	"github.com/KruASe76/look/internal/core/storage"
	"github.com/KruASe76/look/internal/gateway"
	"github.com/KruASe76/look/internal/gateway/rest"
	"github.com/KruASe76/look/internal/metrics"
	"github.com/KruASe76/look/internal/search"
	"github.com/KruASe76/look/internal/search/index"
	"github.com/KruASe76/look/internal/search/index/elastic"
	"github.com/KruASe76/look/internal/search/meta"
	"github.com/KruASe76/look/internal/server"
)

// Dependency injection for testing
var storageFactoryFactory = func(ctx context.Context, cfg *config.Config) (storage.StorageFactory, error) {
	return storage.NewFactory(ctx, cfg.Storage)
}

var indexFactory = func(cfg *config.Config) (index.Index, error) {
	return elastic.New(cfg.Search)
}

var busFactory = newBus

func newBus(cfg *config.Config) pubsub.Bus {
	opts := pubsub.Options{
		BufferSize: cfg.PubSub.BufferSize,
		OnPublish:  reportPublish,
		OnReceive:  reportReceive,
	}
	switch cfg.PubSub.Transport {
	case pubsubconfig.TransportNATS:
		return natsbus.New(cfg.PubSub.NATSURL, opts)
	case pubsubconfig.TransportMemory:
		return memory.New(opts)
	default:
		return pgbus.New(cfg.Storage.Postgres.URL, opts)
	}
}

func reportPublish(channel string, err error, latency time.Duration) {
	metrics.InvalidationsPublished.WithLabelValues(channel, metrics.Result(err)).Inc()
	metrics.InvalidationPublishLatency.WithLabelValues(channel).Observe(latency.Seconds())
}

func reportReceive(channel string) {
	slog.Debug("Invalidation received", "channel", channel)
}

func (m *Manager) Init(ctx context.Context) error {
	if err := m.initStorage(ctx); err != nil {
		return err
	}
	if err := m.initIndex(ctx); err != nil {
		return err
	}
	if err := m.initBus(ctx); err != nil {
		return err
	}

	m.searchService = search.NewService(m.index)
	m.syncer = search.NewSyncer(m.storageFactory.Catalog(), m.index)
	m.metaCache = meta.NewCache(meta.NewRecomputer(m.storageFactory.Catalog()))
	m.notifier = meta.NewNotifier(m.bus, m.cfg.PubSub.Channel)

	if err := m.initCollections(); err != nil {
		return err
	}

	if m.opts.RunAPI {
		m.initAPIServer()
	}
	return nil
}

func (m *Manager) initStorage(ctx context.Context) error {
	sf, err := storageFactoryFactory(ctx, m.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage factory: %w", err)
	}
	m.storageFactory = sf
	slog.Info("Connected to Storage successfully")
	return nil
}

func (m *Manager) initIndex(ctx context.Context) error {
	idx, err := indexFactory(m.cfg)
	if err != nil {
		return fmt.Errorf("failed to create index client: %w", err)
	}
	if m.cfg.Search.EnsureIndex {
		if err := idx.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("failed to ensure search index: %w", err)
		}
	}
	m.index = idx
	slog.Info("Initialized Search Index", "index", m.cfg.Search.IndexName)
	return nil
}

func (m *Manager) initBus(ctx context.Context) error {
	bus := busFactory(m.cfg)
	if c, ok := bus.(pubsub.Connectable); ok {
		if err := c.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect invalidation bus: %w", err)
		}
	}
	m.bus = bus
	slog.Info("Initialized Invalidation Bus", "transport", m.cfg.PubSub.Transport, "channel", m.cfg.PubSub.Channel)
	return nil
}

func (m *Manager) initCollections() error {
	defaults, err := collection.NewDefaultCollectionCache(m.storageFactory.Collections(), m.cfg.Collection.DefaultCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create default collection cache: %w", err)
	}
	m.collections = collection.NewService(m.storageFactory.Collections(), defaults)
	return nil
}

// initAPIServer prepares the invalidation listener and registers the API
// routes. The facet cache is warmed in Start once the listener subscribes.
func (m *Manager) initAPIServer() {
	m.listener = meta.NewListener(m.metaCache, m.bus, m.cfg.PubSub.Channel, meta.ListenerOptions{
		Timeout:  m.cfg.Search.Meta.RecomputeTimeout,
		Coalesce: m.cfg.Search.Meta.Coalesce,
	})

	m.server = server.New(m.cfg.Server, slog.Default())
	api := gateway.NewServer(rest.Deps{
		Search:      m.searchService,
		Catalog:     m.storageFactory.Catalog(),
		Meta:        m.metaCache,
		Syncer:      m.syncer,
		Invalidator: m.notifier,
		Collections: m.collections,
	},
		gateway.WithDevAPIKey(m.cfg.Server.DevAPIKey),
		gateway.WithRequestTimeout(m.cfg.Server.RequestTimeout),
	)
	api.RegisterRoutes(m.server.HTTPMux())
	slog.Info("Registered API routes")
}
