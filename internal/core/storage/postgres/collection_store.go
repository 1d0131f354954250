package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/KruASe76/look/internal/core/storage/types"
	"github.com/google/uuid"
)

type collectionStore struct {
	db *sql.DB
}

// NewCollectionStore creates a PostgreSQL-backed CollectionStore.
func NewCollectionStore(db *sql.DB) types.CollectionStore {
	return &collectionStore{db: db}
}

func (s *collectionStore) EarliestCollectionID(ctx context.Context, ownerID int64) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM collection
		WHERE owner_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, ownerID).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("default collection of user %d: %w", ownerID, wrapError(err))
	}
	return id, nil
}

func (s *collectionStore) OwnedCollectionIDs(ctx context.Context, ownerID int64, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := append([]any{ownerID}, uuidArgs(ids)...)
	return s.queryIDs(ctx, "owned collections", `
		SELECT id FROM collection
		WHERE owner_id = $1 AND id IN (`+placeholders(2, len(ids))+`)
	`, args...)
}

// InsertLinks binds the ids as two uuid arrays so the statement size does not
// grow with the cross product.
func (s *collectionStore) InsertLinks(ctx context.Context, collectionIDs, productIDs []uuid.UUID) (int64, error) {
	if len(collectionIDs) == 0 || len(productIDs) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_product_link (collection_id, product_id)
		SELECT c, p FROM unnest($1::uuid[]) AS c, unnest($2::uuid[]) AS p
		ON CONFLICT DO NOTHING
	`, uuidArray(collectionIDs), uuidArray(productIDs))
	if err != nil {
		return 0, fmt.Errorf("insert links: %w", wrapError(err))
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *collectionStore) DeleteLinks(ctx context.Context, collectionIDs, productIDs []uuid.UUID) (int64, error) {
	if len(collectionIDs) == 0 || len(productIDs) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM collection_product_link
		WHERE collection_id = ANY($1::uuid[])
		  AND product_id = ANY($2::uuid[])
	`, uuidArray(collectionIDs), uuidArray(productIDs))
	if err != nil {
		return 0, fmt.Errorf("delete links: %w", wrapError(err))
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *collectionStore) LinkedProductIDs(ctx context.Context, collectionID uuid.UUID, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	args := append([]any{collectionID.String()}, uuidArgs(productIDs)...)
	return s.queryIDs(ctx, "linked products", `
		SELECT product_id FROM collection_product_link
		WHERE collection_id = $1 AND product_id IN (`+placeholders(2, len(productIDs))+`)
	`, args...)
}

func (s *collectionStore) queryIDs(ctx context.Context, op, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, wrapError(err))
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, wrapError(err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, wrapError(err))
	}
	return ids, nil
}
