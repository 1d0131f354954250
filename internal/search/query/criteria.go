package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/KruASe76/look/pkg/model"
)

// MaxWindow is the deepest result position the index serves (from + size).
const MaxWindow = 10000

// Criteria is a catalog search request.
// Facet sets are OR-ed within a facet and AND-ed across facets.
type Criteria struct {
	Query      string   `schema:"query"`
	Categories []string `schema:"categories"`
	Colors     []string `schema:"colors"`
	Brands     []string `schema:"brands"`
	Sizes      []string `schema:"sizes"`
	MinPrice   *float64 `schema:"min_price"`
	MaxPrice   *float64 `schema:"max_price"`
	Limit      int      `schema:"limit"`
	Offset     int      `schema:"offset"`
}

// Validate checks the window and price bounds.
func (c Criteria) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", model.ErrInvalidCriteria)
	}
	if c.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", model.ErrInvalidCriteria)
	}
	if c.Limit > MaxWindow || c.Offset > MaxWindow-c.Limit {
		return fmt.Errorf("%w: offset + limit must not exceed %d", model.ErrInvalidCriteria, MaxWindow)
	}
	if err := validatePrice("min_price", c.MinPrice); err != nil {
		return err
	}
	return validatePrice("max_price", c.MaxPrice)
}

func validatePrice(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return fmt.Errorf("%w: %s must be a non-negative number", model.ErrInvalidCriteria, name)
	}
	return nil
}

// text returns the trimmed free-text query.
func (c Criteria) text() string {
	return strings.TrimSpace(c.Query)
}
