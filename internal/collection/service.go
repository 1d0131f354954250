package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/KruASe76/look/internal/core/storage"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
)

// Service adds and removes products in a user's collections.
type Service struct {
	store    storage.CollectionStore
	defaults *DefaultCollectionCache
	logger   *slog.Logger
}

// NewService creates a collection service.
func NewService(store storage.CollectionStore, defaults *DefaultCollectionCache) *Service {
	return &Service{
		store:    store,
		defaults: defaults,
		logger:   slog.Default().With("component", "collection"),
	}
}

// AddProducts links productIDs to collectionIDs, or to the user's default
// collection when collectionIDs is empty. Existing links are kept. It returns
// the number of links created.
func (s *Service) AddProducts(ctx context.Context, userID int64, collectionIDs, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	targets, err := s.targets(ctx, userID, collectionIDs)
	if err != nil {
		return 0, err
	}
	n, err := s.store.InsertLinks(ctx, targets, uniq(productIDs))
	if err != nil {
		return 0, fmt.Errorf("add products: %w", err)
	}
	s.logger.Debug("Products added", "user", userID, "collections", len(targets), "created", n)
	return n, nil
}

// RemoveProducts unlinks productIDs from collectionIDs, or from the user's
// default collection when collectionIDs is empty. It returns the number of
// links removed.
func (s *Service) RemoveProducts(ctx context.Context, userID int64, collectionIDs, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	targets, err := s.targets(ctx, userID, collectionIDs)
	if err != nil {
		return 0, err
	}
	n, err := s.store.DeleteLinks(ctx, targets, uniq(productIDs))
	if err != nil {
		return 0, fmt.Errorf("remove products: %w", err)
	}
	s.logger.Debug("Products removed", "user", userID, "collections", len(targets), "removed", n)
	return n, nil
}

// DefaultContains returns which of productIDs are in the user's default
// collection. A user without collections has none.
func (s *Service) DefaultContains(ctx context.Context, userID int64, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(productIDs) == 0 {
		return []uuid.UUID{}, nil
	}
	id, err := s.defaults.GetOrResolve(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return []uuid.UUID{}, nil
	}
	if err != nil {
		return nil, err
	}
	linked, err := s.store.LinkedProductIDs(ctx, id, uniq(productIDs))
	if err != nil {
		return nil, fmt.Errorf("default collection contents: %w", err)
	}
	return linked, nil
}

// targets resolves the collections an edit applies to and checks ownership.
func (s *Service) targets(ctx context.Context, userID int64, collectionIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(collectionIDs) == 0 {
		id, err := s.defaults.GetOrResolve(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("default collection of user %d: %w", userID, err)
		}
		return []uuid.UUID{id}, nil
	}

	wanted := uniq(collectionIDs)
	owned, err := s.store.OwnedCollectionIDs(ctx, userID, wanted)
	if err != nil {
		return nil, fmt.Errorf("check collection ownership: %w", err)
	}
	if len(owned) != len(wanted) {
		return nil, fmt.Errorf("user %d does not own every target collection: %w", userID, model.ErrForbidden)
	}
	return wanted, nil
}

func uniq(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
