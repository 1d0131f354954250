package testing

import (
	"context"
	"slices"
	"sync"

	"github.com/KruASe76/look/internal/core/storage/types"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
)

type link struct {
	collection uuid.UUID
	product    uuid.UUID
}

// MemoryCollections is a CollectionStore over in-memory collections and links.
type MemoryCollections struct {
	mu          sync.Mutex
	collections []model.Collection
	links       map[link]struct{}
	calls       map[string]int
	errs        map[string]error
}

var _ types.CollectionStore = (*MemoryCollections)(nil)

// NewMemoryCollections creates a store holding collections.
func NewMemoryCollections(collections ...model.Collection) *MemoryCollections {
	return &MemoryCollections{
		collections: slices.Clone(collections),
		links:       make(map[link]struct{}),
		calls:       make(map[string]int),
		errs:        make(map[string]error),
	}
}

// AddCollection stores another collection.
func (s *MemoryCollections) AddCollection(c model.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append(s.collections, c)
}

// FailWith makes method return err until cleared with a nil err.
func (s *MemoryCollections) FailWith(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, method)
		return
	}
	s.errs[method] = err
}

// Calls returns how many times method was invoked.
func (s *MemoryCollections) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Linked reports whether product is in collection.
func (s *MemoryCollections) Linked(collection, product uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.links[link{collection, product}]
	return ok
}

// enter records the call and returns the configured error. Callers hold mu.
func (s *MemoryCollections) enter(ctx context.Context, method string) error {
	s.calls[method]++
	if err := s.errs[method]; err != nil {
		return err
	}
	return ctx.Err()
}

func (s *MemoryCollections) EarliestCollectionID(ctx context.Context, ownerID int64) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "EarliestCollectionID"); err != nil {
		return uuid.Nil, err
	}
	var earliest *model.Collection
	for i := range s.collections {
		c := &s.collections[i]
		if c.OwnerID != ownerID {
			continue
		}
		if earliest == nil || c.CreatedAt.Before(earliest.CreatedAt) {
			earliest = c
		}
	}
	if earliest == nil {
		return uuid.Nil, model.ErrNotFound
	}
	return earliest.ID, nil
}

func (s *MemoryCollections) OwnedCollectionIDs(ctx context.Context, ownerID int64, ids []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "OwnedCollectionIDs"); err != nil {
		return nil, err
	}
	var out []uuid.UUID
	for _, c := range s.collections {
		if c.OwnerID == ownerID && slices.Contains(ids, c.ID) {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

func (s *MemoryCollections) InsertLinks(ctx context.Context, collectionIDs, productIDs []uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertLinks"); err != nil {
		return 0, err
	}
	var n int64
	for _, c := range collectionIDs {
		for _, p := range productIDs {
			l := link{c, p}
			if _, ok := s.links[l]; ok {
				continue
			}
			s.links[l] = struct{}{}
			n++
		}
	}
	return n, nil
}

func (s *MemoryCollections) DeleteLinks(ctx context.Context, collectionIDs, productIDs []uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteLinks"); err != nil {
		return 0, err
	}
	var n int64
	for _, c := range collectionIDs {
		for _, p := range productIDs {
			l := link{c, p}
			if _, ok := s.links[l]; ok {
				delete(s.links, l)
				n++
			}
		}
	}
	return n, nil
}

func (s *MemoryCollections) LinkedProductIDs(ctx context.Context, collectionID uuid.UUID, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "LinkedProductIDs"); err != nil {
		return nil, err
	}
	var out []uuid.UUID
	for _, p := range productIDs {
		if _, ok := s.links[link{collectionID, p}]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
