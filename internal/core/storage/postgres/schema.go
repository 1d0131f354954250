package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the tables the catalog and collection stores query.
// Columns outside those queries belong to the catalog CRUD layer.
const schema = `
CREATE TABLE IF NOT EXISTS product (
    id              UUID PRIMARY KEY,
    article         VARCHAR(64) NOT NULL,
    name            TEXT NOT NULL,
    brand           TEXT NOT NULL,
    category        TEXT NOT NULL,
    color_name      TEXT NOT NULL,
    color_code      VARCHAR(16) NOT NULL,
    sizes           TEXT[] NOT NULL DEFAULT '{}',
    image_urls      TEXT[] NOT NULL DEFAULT '{}',
    description     TEXT NOT NULL DEFAULT '',
    price           NUMERIC(12, 2) NOT NULL,
    discount_price  NUMERIC(12, 2),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_product_updated_at ON product(updated_at);
CREATE INDEX IF NOT EXISTS idx_product_article ON product(article);

CREATE TABLE IF NOT EXISTS collection (
    id               UUID PRIMARY KEY,
    owner_id         BIGINT NOT NULL,
    name             TEXT NOT NULL,
    cover_image_url  TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_collection_owner_created ON collection(owner_id, created_at);

CREATE TABLE IF NOT EXISTS collection_product_link (
    collection_id  UUID NOT NULL REFERENCES collection(id) ON DELETE CASCADE,
    product_id     UUID NOT NULL REFERENCES product(id) ON DELETE CASCADE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (collection_id, product_id)
);
`

// EnsureSchema creates the product, collection and link tables and their
// indexes if they don't exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", wrapError(err))
	}
	return nil
}
