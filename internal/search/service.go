// Package search runs catalog searches and suggestions against the index and
// keeps the index in step with the system of record.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KruASe76/look/internal/metrics"
	"github.com/KruASe76/look/internal/search/index"
	"github.com/KruASe76/look/internal/search/query"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
)

// MaxSuggestions bounds the suggestion limit.
const MaxSuggestions = 100

// Service executes compiled queries.
type Service struct {
	index  index.Index
	logger *slog.Logger
}

// NewService creates a search service over idx.
func NewService(idx index.Index) *Service {
	return &Service{
		index:  idx,
		logger: slog.Default().With("component", "search"),
	}
}

// Search returns product ids matching c in rank order.
// An article-shaped query with exactly one exact article hit returns only that hit.
func (s *Service) Search(ctx context.Context, c query.Criteria) ([]uuid.UUID, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	plan := query.Compile(c)

	if plan.Article != nil {
		hits, err := s.execute(ctx, *plan.Article)
		if err != nil {
			return nil, err
		}
		if len(hits) == 1 {
			return s.ids(hits), nil
		}
	}

	hits, err := s.execute(ctx, plan.Main)
	if err != nil {
		return nil, err
	}
	return s.ids(hits), nil
}

// Suggest returns up to limit product names completing text.
// Empty text yields a random sample.
func (s *Service) Suggest(ctx context.Context, text string, limit int) ([]string, error) {
	if limit < 1 || limit > MaxSuggestions {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", model.ErrInvalidCriteria, MaxSuggestions)
	}

	hits, err := s.execute(ctx, query.CompileSuggestions(strings.TrimSpace(text), limit))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		var src map[string]any
		if err := json.Unmarshal(h.Source, &src); err != nil {
			s.logger.Warn("Skipping suggestion with unreadable source", "id", h.ID, "error", err)
			continue
		}
		if name, ok := src[query.SuggestField].(string); ok && name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *Service) execute(ctx context.Context, d query.Descriptor) ([]index.Hit, error) {
	start := time.Now()
	hits, err := s.index.Search(ctx, d)

	kind := string(d.Kind)
	metrics.SearchLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.SearchRequests.WithLabelValues(kind, metrics.Result(err)).Inc()

	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}
	return hits, nil
}

// ids converts hit ids, skipping documents whose id is not a product id.
func (s *Service) ids(hits []index.Hit) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			s.logger.Warn("Skipping hit with malformed id", "id", h.ID)
			continue
		}
		out = append(out, id)
	}
	return out
}
