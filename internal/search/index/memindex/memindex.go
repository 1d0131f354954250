// Package memindex is an in-process index.Index that evaluates compiled
// descriptors over a document snapshot. It understands the query clauses the
// query package emits: match_all, term, terms, range, bool, multi_match
// (best_fields with fuzziness, and bool_prefix) and function_score with
// random_score. Text is lowercased and split on non-alphanumerics; there is no
// stemming.
package memindex

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/KruASe76/look/internal/search/index"
	"github.com/KruASe76/look/internal/search/query"
	"github.com/KruASe76/look/pkg/model"
)

var _ index.Index = (*Index)(nil)

// Index holds documents in memory.
type Index struct {
	mu       sync.RWMutex
	docs     map[string]index.Document
	executed []query.Descriptor
	failWith error

	randMu sync.Mutex
	rnd    *rand.Rand
}

// New creates an empty index. A nil source uses a randomly seeded generator.
func New(source rand.Source) *Index {
	if source == nil {
		source = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Index{
		docs: make(map[string]index.Document),
		rnd:  rand.New(source),
	}
}

// FailWith makes every subsequent call return err. A nil err clears it.
func (x *Index) FailWith(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.failWith = err
}

// Executed returns the descriptors searched so far, in order.
func (x *Index) Executed() []query.Descriptor {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return slices.Clone(x.executed)
}

// Documents returns a copy of the stored documents keyed by id.
func (x *Index) Documents() map[string]index.Document {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make(map[string]index.Document, len(x.docs))
	for id, d := range x.docs {
		out[id] = d
	}
	return out
}

// Len returns the number of stored documents.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// EnsureIndex is a no-op.
func (x *Index) EnsureIndex(ctx context.Context) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.failWith
}

// Upsert stores doc under doc.ID.
func (x *Index) Upsert(ctx context.Context, doc index.Document) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memindex: upsert: %w", model.WrapError(err))
	}
	if doc.ID == "" {
		return fmt.Errorf("memindex: upsert: %w: empty document id", model.ErrInvariantViolation)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.failWith != nil {
		return x.failWith
	}
	doc.Sizes = slices.Clone(doc.Sizes)
	x.docs[doc.ID] = doc
	return nil
}

// Search evaluates d over the current documents.
func (x *Index) Search(ctx context.Context, d query.Descriptor) ([]index.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("memindex: search: %w", model.WrapError(err))
	}

	x.mu.Lock()
	x.executed = append(x.executed, d)
	failWith := x.failWith
	x.mu.Unlock()
	if failWith != nil {
		return nil, failWith
	}

	if d.From < 0 || d.Size < 0 {
		return nil, fmt.Errorf("memindex: %w: negative window from=%d size=%d", model.ErrInvariantViolation, d.From, d.Size)
	}

	q, err := normalize(d.Query)
	if err != nil {
		return nil, err
	}
	eval, err := x.compile(q)
	if err != nil {
		return nil, err
	}

	x.mu.RLock()
	hits := make([]index.Hit, 0)
	docs := make(map[string]index.Document)
	for id, doc := range x.docs {
		ok, score := eval(doc)
		if !ok {
			continue
		}
		hits = append(hits, index.Hit{ID: id, Score: score})
		docs[id] = doc
	}
	x.mu.RUnlock()

	slices.SortFunc(hits, func(a, b index.Hit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if d.From >= len(hits) {
		return []index.Hit{}, nil
	}
	hits = hits[d.From:min(d.From+d.Size, len(hits))]

	for i := range hits {
		src, err := project(docs[hits[i].ID], d.Source)
		if err != nil {
			return nil, err
		}
		hits[i].Source = src
	}
	return hits, nil
}

func (x *Index) random() float64 {
	x.randMu.Lock()
	defer x.randMu.Unlock()
	return x.rnd.Float64()
}

// normalize round-trips the query through JSON so evaluation sees the same
// shapes the remote index would.
func normalize(q map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("memindex: %w: encode query: %v", model.ErrInvariantViolation, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("memindex: %w: decode query: %v", model.ErrInvariantViolation, err)
	}
	return out, nil
}

// project applies the _source setting: false returns no source, a field list
// returns those fields, anything else the whole document.
func project(doc index.Document, source any) (json.RawMessage, error) {
	switch s := source.(type) {
	case bool:
		if !s {
			return nil, nil
		}
	case []string:
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		var all map[string]json.RawMessage
		if err := json.Unmarshal(raw, &all); err != nil {
			return nil, err
		}
		picked := make(map[string]json.RawMessage, len(s))
		for _, f := range s {
			if v, ok := all[f]; ok {
				picked[f] = v
			}
		}
		return json.Marshal(picked)
	}
	return json.Marshal(doc)
}
