package rest

import (
	"net/http"

	"github.com/KruASe76/look/internal/search/query"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
)

// Pagination defaults
const (
	DefaultLimit            = 10
	DefaultSuggestionsLimit = 10
)

// ProductView is a search result as returned to clients.
type ProductView struct {
	model.Product
	IsContainedInUserCollections bool `json:"is_contained_in_user_collections"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	criteria := query.Criteria{Limit: DefaultLimit}
	if err := h.decoder.Decode(&criteria, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid search parameters")
		return
	}

	ids, err := h.deps.Search.Search(r.Context(), criteria)
	if err != nil {
		writeServiceError(w, r, err, "Failed to search products")
		return
	}

	products, err := h.resolve(r, ids)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load products")
		return
	}

	saved := map[uuid.UUID]bool{}
	if uid, ok := userID(r); ok && len(products) > 0 {
		contained, err := h.deps.Collections.DefaultContains(r.Context(), uid, ids)
		if err != nil {
			writeServiceError(w, r, err, "Failed to load saved products")
			return
		}
		for _, id := range contained {
			saved[id] = true
		}
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{Product: p, IsContainedInUserCollections: saved[p.ID]}
	}
	writeJSON(w, http.StatusOK, views)
}

// resolve loads ids from the store in rank order, dropping ids that no
// longer exist.
func (h *Handler) resolve(r *http.Request, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	found, err := h.deps.Catalog.ProductsByIDs(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type suggestionsParams struct {
	Query string `schema:"query"`
	Limit int    `schema:"limit"`
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	params := suggestionsParams{Limit: DefaultSuggestionsLimit}
	if err := h.decoder.Decode(&params, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid suggestion parameters")
		return
	}

	names, err := h.deps.Search.Suggest(r.Context(), params.Query, params.Limit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load suggestions")
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *Handler) handleMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.deps.Meta.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to load search metadata")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}
