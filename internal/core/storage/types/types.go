// Package types declares the system-of-record boundary: the only query shapes
// the search and collection services issue against the relational store.
package types

import (
	"context"
	"time"

	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
)

// CatalogStore reads catalog records and their facet aggregates.
type CatalogStore interface {
	// ProductsUpdatedSince returns every product whose updated_at is at or after since.
	ProductsUpdatedSince(ctx context.Context, since time.Time) ([]model.Product, error)

	// ProductsByIDs returns the products that still exist, in no particular order.
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// DistinctBrands returns the distinct brand names, ascending.
	DistinctBrands(ctx context.Context) ([]string, error)

	// DistinctCategories returns the distinct category names, ascending.
	DistinctCategories(ctx context.Context) ([]string, error)

	// ColorCodes maps every color name to one representative hex code.
	// For a color name carried with several codes the lowest code wins.
	ColorCodes(ctx context.Context) (map[string]string, error)
}

// CollectionStore reads collection ownership and edits collection membership.
type CollectionStore interface {
	// EarliestCollectionID returns the id of the owner's first-created collection,
	// or model.ErrNotFound when the owner has none.
	EarliestCollectionID(ctx context.Context, ownerID int64) (uuid.UUID, error)

	// OwnedCollectionIDs returns the subset of ids owned by ownerID.
	OwnedCollectionIDs(ctx context.Context, ownerID int64, ids []uuid.UUID) ([]uuid.UUID, error)

	// InsertLinks links every product to every collection, skipping existing links.
	// It returns the number of links created.
	InsertLinks(ctx context.Context, collectionIDs, productIDs []uuid.UUID) (int64, error)

	// DeleteLinks unlinks every product from every collection.
	// It returns the number of links removed.
	DeleteLinks(ctx context.Context, collectionIDs, productIDs []uuid.UUID) (int64, error)

	// LinkedProductIDs returns the subset of productIDs linked to collectionID.
	LinkedProductIDs(ctx context.Context, collectionID uuid.UUID, productIDs []uuid.UUID) ([]uuid.UUID, error)
}
