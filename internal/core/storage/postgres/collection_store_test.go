package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/KruASe76/look/internal/core/storage/types"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passArrays lets slice arguments through to the expectations; the pgx
// driver encodes them as Postgres arrays.
type passArrays struct{}

func (passArrays) ConvertValue(v any) (driver.Value, error) {
	if ids, ok := v.([]string); ok {
		return ids, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func setupCollections(t *testing.T) (sqlmock.Sqlmock, types.CollectionStore) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passArrays{}))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewCollectionStore(db)
}

func TestEarliestCollectionID(t *testing.T) {
	mock, store := setupCollections(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT id FROM collection WHERE owner_id = \$1 ORDER BY created_at ASC LIMIT 1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))

	got, err := store.EarliestCollectionID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEarliestCollectionID_NotFound(t *testing.T) {
	mock, store := setupCollections(t)

	mock.ExpectQuery(`SELECT id FROM collection`).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.EarliestCollectionID(context.Background(), 7)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEarliestCollectionID_Unavailable(t *testing.T) {
	mock, store := setupCollections(t)

	mock.ExpectQuery(`SELECT id FROM collection`).WillReturnError(errors.New("i/o timeout"))

	_, err := store.EarliestCollectionID(context.Background(), 7)
	assert.ErrorIs(t, err, model.ErrUnavailable)
}

func TestOwnedCollectionIDs(t *testing.T) {
	mock, store := setupCollections(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT id FROM collection WHERE owner_id = \$1 AND id IN \(\$2, \$3\)`).
		WithArgs(int64(1), a.String(), b.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()))

	owned, err := store.OwnedCollectionIDs(context.Background(), 1, []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a}, owned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertLinks(t *testing.T) {
	mock, store := setupCollections(t)
	c := uuid.New()
	p1, p2 := uuid.New(), uuid.New()

	mock.ExpectExec(`INSERT INTO collection_product_link \(collection_id, product_id\) SELECT c, p FROM unnest\(\$1::uuid\[\]\) AS c, unnest\(\$2::uuid\[\]\) AS p ON CONFLICT DO NOTHING`).
		WithArgs([]string{c.String()}, []string{p1.String(), p2.String()}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.InsertLinks(context.Background(), []uuid.UUID{c}, []uuid.UUID{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertLinks_BindsTwoArrays(t *testing.T) {
	mock, store := setupCollections(t)
	collections := []uuid.UUID{uuid.New(), uuid.New()}
	products := make([]uuid.UUID, 40000)
	for i := range products {
		products[i] = uuid.New()
	}

	mock.ExpectExec(`INSERT INTO collection_product_link`).
		WithArgs(uuidArray(collections), uuidArray(products)).
		WillReturnResult(sqlmock.NewResult(0, 80000))

	n, err := store.InsertLinks(context.Background(), collections, products)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertLinks_UnknownProduct(t *testing.T) {
	mock, store := setupCollections(t)

	mock.ExpectExec(`INSERT INTO collection_product_link`).
		WillReturnError(&pgconn.PgError{Code: "23503", Detail: "Key (product_id) is not present"})

	_, err := store.InsertLinks(context.Background(), []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestInsertLinks_Empty(t *testing.T) {
	mock, store := setupCollections(t)

	n, err := store.InsertLinks(context.Background(), nil, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteLinks(t *testing.T) {
	mock, store := setupCollections(t)
	c1, c2 := uuid.New(), uuid.New()
	p := uuid.New()

	mock.ExpectExec(`DELETE FROM collection_product_link WHERE collection_id = ANY\(\$1::uuid\[\]\) AND product_id = ANY\(\$2::uuid\[\]\)`).
		WithArgs([]string{c1.String(), c2.String()}, []string{p.String()}).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.DeleteLinks(context.Background(), []uuid.UUID{c1, c2}, []uuid.UUID{p})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkedProductIDs(t *testing.T) {
	mock, store := setupCollections(t)
	c := uuid.New()
	p1, p2 := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT product_id FROM collection_product_link WHERE collection_id = \$1 AND product_id IN \(\$2, \$3\)`).
		WithArgs(c.String(), p1.String(), p2.String()).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow(p2.String()))

	linked, err := store.LinkedProductIDs(context.Background(), c, []uuid.UUID{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p2}, linked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
