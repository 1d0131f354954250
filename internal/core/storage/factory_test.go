package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/KruASe76/look/internal/core/storage/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPostgres(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := newPostgresDB
	newPostgresDB = func(config.PostgresConfig) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { newPostgresDB = orig })
}

func TestNewFactory_EnsuresSchema(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	stubPostgres(t, db, nil)

	mock.ExpectPing()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS product`).WillReturnResult(sqlmock.NewResult(0, 0))

	f, err := NewFactory(context.Background(), config.DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, f.Catalog())
	assert.NotNil(t, f.Collections())

	mock.ExpectClose()
	require.NoError(t, f.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewFactory_SkipsSchema(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	stubPostgres(t, db, nil)

	mock.ExpectPing()

	cfg := config.DefaultConfig()
	cfg.EnsureSchema = false
	f, err := NewFactory(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	_ = f.Close()
}

func TestNewFactory_PingFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	stubPostgres(t, db, nil)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	_, err = NewFactory(context.Background(), config.DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewFactory_OpenFails(t *testing.T) {
	stubPostgres(t, nil, errors.New("bad dsn"))

	_, err := NewFactory(context.Background(), config.DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad dsn")
}

func TestNewPostgresDB_AppliesPool(t *testing.T) {
	db, err := newPostgresDB(config.DefaultConfig().Postgres)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 10, db.Stats().MaxOpenConnections)
}
