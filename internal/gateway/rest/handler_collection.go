package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// MembershipRequest edits collection membership. Empty CollectionIDs targets
// the user's default collection.
type MembershipRequest struct {
	CollectionIDs []uuid.UUID `json:"collection_ids"`
	ProductIDs    []uuid.UUID `json:"product_ids"`
}

type membershipFunc func(ctx context.Context, userID int64, collectionIDs, productIDs []uuid.UUID) (int64, error)

func (h *Handler) handleAddProducts(w http.ResponseWriter, r *http.Request) {
	h.editMembership(w, r, h.deps.Collections.AddProducts, "Failed to add products")
}

func (h *Handler) handleRemoveProducts(w http.ResponseWriter, r *http.Request) {
	h.editMembership(w, r, h.deps.Collections.RemoveProducts, "Failed to remove products")
}

func (h *Handler) editMembership(w http.ResponseWriter, r *http.Request, edit membershipFunc, failure string) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "User identification required")
		return
	}

	var req MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if len(req.ProductIDs) == 0 {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "product_ids is required")
		return
	}

	if _, err := edit(r.Context(), uid, req.CollectionIDs, req.ProductIDs); err != nil {
		writeServiceError(w, r, err, failure)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
