package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/KruASe76/look/pkg/model"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

// wrapError maps driver errors onto the model taxonomy.
// Anything that is not a missing row, a cancellation or a constraint
// violation is treated as the store being unavailable.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	if model.IsCanceled(err) {
		return fmt.Errorf("%w: %v", model.ErrCanceled, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", model.ErrNotFound, pgErr.Detail)
	}
	return fmt.Errorf("%w: %v", model.ErrUnavailable, err)
}
