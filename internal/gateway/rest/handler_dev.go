package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/KruASe76/look/internal/server"
)

// SyncRequest is the body of the dev sync route.
type SyncRequest struct {
	Since time.Time `json:"since"`
}

// handleSync syncs products changed since the watermark and, when anything
// was written, asks every process to recompute facets. It responds with the
// number of products synced.
func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if req.Since.IsZero() {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "since is required")
		return
	}

	count, err := h.deps.Syncer.Sync(r.Context(), req.Since)
	if err != nil {
		writeServiceError(w, r, err, "Failed to sync search index")
		return
	}

	if count > 0 {
		// The index is already updated; a lost invalidation only delays facet freshness.
		if err := h.deps.Invalidator.PublishInvalidation(r.Context()); err != nil {
			slog.Warn("Failed to publish meta invalidation after sync",
				"error", err,
				"request_id", server.GetRequestID(r.Context()),
			)
		}
	}
	writeJSON(w, http.StatusCreated, count)
}

// handleMetaRefresh recomputes this process's facets, tells the other
// processes to do the same and responds with the fresh value.
func (h *Handler) handleMetaRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Meta.Recompute(r.Context()); err != nil {
		writeServiceError(w, r, err, "Failed to recompute search metadata")
		return
	}
	if err := h.deps.Invalidator.PublishInvalidation(r.Context()); err != nil {
		writeServiceError(w, r, err, "Failed to publish meta invalidation")
		return
	}

	meta, err := h.deps.Meta.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to load search metadata")
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}
