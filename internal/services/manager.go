package services

import (
	"sync"

	"github.com/KruASe76/look/internal/collection"
	"github.com/KruASe76/look/internal/config"
	"github.com/KruASe76/look/internal/core/pubsub"
	"github.com/KruASe76/look/internal/core/storage"
	"github.com/KruASe76/look/internal/search"
	"github.com/KruASe76/look/internal/search/index"
	"github.com/KruASe76/look/internal/search/meta"
	"github.com/KruASe76/look/internal/server"
)

// Options selects what the process runs.
type Options struct {
	// RunAPI serves HTTP and keeps the facet cache fresh from invalidations.
	// Without it only the stores, the index and the bus are wired, which is
	// what one-shot commands need.
	RunAPI bool
}

type Manager struct {
	cfg  *config.Config
	opts Options

	storageFactory storage.StorageFactory
	bus            pubsub.Bus
	index          index.Index

	searchService *search.Service
	syncer        *search.Syncer
	metaCache     *meta.Cache
	notifier      *meta.Notifier
	listener      *meta.Listener
	collections   *collection.Service

	server server.Service
	wg     sync.WaitGroup
}

func NewManager(cfg *config.Config, opts Options) *Manager {
	return &Manager{
		cfg:  cfg,
		opts: opts,
	}
}

// Syncer returns the index syncer. Nil before Init.
func (m *Manager) Syncer() *search.Syncer {
	return m.syncer
}

// MetaCache returns the facet cache. Nil before Init.
func (m *Manager) MetaCache() *meta.Cache {
	return m.metaCache
}

// Notifier returns the invalidation notifier. Nil before Init.
func (m *Manager) Notifier() *meta.Notifier {
	return m.notifier
}
