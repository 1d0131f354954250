package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/KruASe76/look/internal/core/storage/config"
	"github.com/KruASe76/look/internal/core/storage/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// StorageFactory owns the connection pool and the stores built on it.
type StorageFactory interface {
	Catalog() CatalogStore
	Collections() CollectionStore
	Close() error
}

// Dependency injection for testing
var newPostgresDB = func(cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	return db, nil
}

type factory struct {
	db          *sql.DB
	catalog     CatalogStore
	collections CollectionStore
}

// NewFactory opens the pool, verifies connectivity and optionally creates the schema.
func NewFactory(ctx context.Context, cfg config.Config) (StorageFactory, error) {
	db, err := newPostgresDB(cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if cfg.EnsureSchema {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("PostgreSQL schema ensured")
	}

	return &factory{
		db:          db,
		catalog:     postgres.NewCatalogStore(db),
		collections: postgres.NewCollectionStore(db),
	}, nil
}

func (f *factory) Catalog() CatalogStore { return f.catalog }

func (f *factory) Collections() CollectionStore { return f.collections }

func (f *factory) Close() error {
	return f.db.Close()
}
