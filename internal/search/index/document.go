package index

import (
	"github.com/KruASe76/look/pkg/model"
)

// Document is the denormalized projection of a product stored in the index.
// ID is the document id and is not part of the source.
type Document struct {
	ID          string   `json:"-"`
	Article     string   `json:"article"`
	Name        string   `json:"name"`
	NameSuggest string   `json:"name_suggest"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	ColorName   string   `json:"color_name"`
	Sizes       []string `json:"sizes"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
}

// FromProduct projects a catalog record into an index document.
func FromProduct(p model.Product) Document {
	sizes := p.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	return Document{
		ID:          p.ID.String(),
		Article:     p.Article,
		Name:        p.Name,
		NameSuggest: p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		ColorName:   p.ColorName,
		Sizes:       sizes,
		Description: p.Description,
		Price:       p.Price,
	}
}
