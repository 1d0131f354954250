// Package index defines the boundary to the external inverted-index service.
package index

import (
	"context"
	"encoding/json"

	"github.com/KruASe76/look/internal/search/query"
)

// Hit is one ranked search result.
type Hit struct {
	ID     string
	Score  float64
	Source json.RawMessage
}

// Index executes compiled queries and stores documents.
// Implementations report a temporarily unreachable index as model.ErrUnavailable
// and a rejected query as model.ErrInvariantViolation.
type Index interface {
	// Search executes d and returns hits in rank order.
	Search(ctx context.Context, d query.Descriptor) ([]Hit, error)

	// Upsert writes doc under doc.ID, replacing any previous version.
	Upsert(ctx context.Context, doc Document) error

	// EnsureIndex creates the index with its settings and mappings if missing.
	EnsureIndex(ctx context.Context) error
}
