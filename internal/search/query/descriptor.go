// Package query compiles search criteria into index query descriptors.
// Compilation is pure: no I/O, no state, a fresh descriptor per call.
package query

import "encoding/json"

// Kind labels how a descriptor ranks its hits.
type Kind string

const (
	// KindArticle is an exact lookup on the article field.
	KindArticle Kind = "article"
	// KindRanked is a relevance-ranked and/or filtered query.
	KindRanked Kind = "ranked"
	// KindRandom matches everything with random scoring.
	KindRandom Kind = "random"
	// KindSuggest is a prefix-completion query.
	KindSuggest Kind = "suggest"
)

// Descriptor is a compiled index query plus its result window.
type Descriptor struct {
	Kind  Kind
	Query map[string]any

	// Source is false to return ids only, or a list of fields to fetch.
	Source any

	From int
	Size int
}

// Body returns the search request body.
func (d Descriptor) Body() map[string]any {
	return map[string]any{
		"query":   d.Query,
		"_source": d.Source,
		"from":    d.From,
		"size":    d.Size,
	}
}

// MarshalJSON encodes the search request body.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Body())
}
