package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog record as stored in the system of record.
type Product struct {
	ID            uuid.UUID `json:"id"`
	Article       string    `json:"article"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	ColorName     string    `json:"color_name"`
	ColorCode     string    `json:"color_code"`
	Sizes         []string  `json:"sizes"`
	ImageURLs     []string  `json:"image_urls"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DiscountPrice float64   `json:"discount_price"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Collection is a user-owned list of products. The earliest-created collection
// of a user is their default collection.
type Collection struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	Name          string    `json:"name"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SearchMeta is the facet aggregate served to catalog filter UIs.
// Values are replaced wholesale and must not be mutated after publication.
type SearchMeta struct {
	Brands     []string          `json:"brands"`
	Categories []string          `json:"categories"`
	Colors     map[string]string `json:"colors"`
}
