// Package postgres implements the storage types over PostgreSQL through
// database/sql and the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/KruASe76/look/internal/core/storage/types"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, article, name, brand, category, color_name, color_code,
       sizes, image_urls, description, price, discount_price, updated_at`

type catalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a PostgreSQL-backed CatalogStore.
func NewCatalogStore(db *sql.DB) types.CatalogStore {
	return &catalogStore{db: db}
}

func (s *catalogStore) ProductsUpdatedSince(ctx context.Context, since time.Time) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM product
		WHERE updated_at >= $1
		ORDER BY updated_at, id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("products updated since: %w", wrapError(err))
	}
	return scanProducts(rows)
}

func (s *catalogStore) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM product
		WHERE id IN (`+placeholders(1, len(ids))+`)
	`, uuidArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("products by id: %w", wrapError(err))
	}
	return scanProducts(rows)
}

func (s *catalogStore) DistinctBrands(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "brand", `SELECT DISTINCT brand FROM product ORDER BY brand`)
}

func (s *catalogStore) DistinctCategories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "category", `SELECT DISTINCT category FROM product ORDER BY category`)
}

func (s *catalogStore) distinct(ctx context.Context, facet, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", facet, wrapError(err))
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("distinct %s: %w", facet, wrapError(err))
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distinct %s: %w", facet, wrapError(err))
	}
	return values, nil
}

func (s *catalogStore) ColorCodes(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT ON (color_name) color_name, color_code
		FROM product
		ORDER BY color_name, color_code
	`)
	if err != nil {
		return nil, fmt.Errorf("color codes: %w", wrapError(err))
	}
	defer rows.Close()

	colors := make(map[string]string)
	for rows.Next() {
		var name, code string
		if err := rows.Scan(&name, &code); err != nil {
			return nil, fmt.Errorf("color codes: %w", wrapError(err))
		}
		colors[name] = code
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("color codes: %w", wrapError(err))
	}
	return colors, nil
}

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()

	m := pgtype.NewMap()
	var products []model.Product
	for rows.Next() {
		var (
			p        model.Product
			discount sql.NullFloat64
		)
		if err := rows.Scan(
			&p.ID, &p.Article, &p.Name, &p.Brand, &p.Category, &p.ColorName, &p.ColorCode,
			m.SQLScanner(&p.Sizes), m.SQLScanner(&p.ImageURLs),
			&p.Description, &p.Price, &discount, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", wrapError(err))
		}
		p.DiscountPrice = discount.Float64
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan products: %w", wrapError(err))
	}
	return products, nil
}
