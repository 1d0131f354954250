package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/KruASe76/look/internal/core/storage"
	"github.com/KruASe76/look/internal/ctxkeys"
	"github.com/KruASe76/look/internal/search/query"
	"github.com/KruASe76/look/internal/server"
	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, c query.Criteria) ([]uuid.UUID, error)
	Suggest(ctx context.Context, text string, limit int) ([]string, error)
}

// MetaCache serves and refreshes the facet aggregate.
type MetaCache interface {
	Get(ctx context.Context) (model.SearchMeta, error)
	Recompute(ctx context.Context) error
}

// Syncer pushes changed products into the index.
type Syncer interface {
	Sync(ctx context.Context, since time.Time) (int, error)
}

// Invalidator broadcasts facet invalidations.
type Invalidator interface {
	PublishInvalidation(ctx context.Context) error
}

// Collections edits collection membership.
type Collections interface {
	AddProducts(ctx context.Context, userID int64, collectionIDs, productIDs []uuid.UUID) (int64, error)
	RemoveProducts(ctx context.Context, userID int64, collectionIDs, productIDs []uuid.UUID) (int64, error)
	DefaultContains(ctx context.Context, userID int64, productIDs []uuid.UUID) ([]uuid.UUID, error)
}

// Deps are the services the handler adapts to HTTP.
type Deps struct {
	Search      Searcher
	Catalog     storage.CatalogStore
	Meta        MetaCache
	Syncer      Syncer
	Invalidator Invalidator
	Collections Collections

	// DevAPIKey guards the dev routes. Empty disables them.
	DevAPIKey string

	// RequestTimeout bounds regular requests. Zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
}

type Handler struct {
	deps    Deps
	decoder *schema.Decoder
}

func NewHandler(deps Deps) *Handler {
	if deps.Search == nil || deps.Catalog == nil || deps.Meta == nil {
		panic("search, catalog and meta services cannot be nil")
	}
	if deps.Syncer == nil || deps.Invalidator == nil || deps.Collections == nil {
		panic("syncer, invalidator and collection services cannot be nil")
	}

	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = DefaultRequestTimeout
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &Handler{deps: deps, decoder: decoder}
}

// Default body size limit
const DefaultMaxBodySize = 1 << 20 // 1MB

// Default request timeouts
const (
	DefaultRequestTimeout = 15 * time.Second
	LongRequestTimeout    = 5 * time.Minute // For index sync
)

// UserIDHeader carries the authenticated user id set by the upstream gateway.
const UserIDHeader = "X-User-ID"

// APIError represents a structured error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnavailable   = "UNAVAILABLE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// writeError writes a structured JSON error response
func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{Code: code, Message: message}); err != nil {
		slog.Warn("Failed to encode error response", "error", err)
	}
}

// writeServiceError maps a service error onto a status. Canceled requests get
// 499 and no body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case model.IsCanceled(err):
		w.WriteHeader(499) // Client Closed Request
	case errors.Is(err, model.ErrInvalidCriteria):
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, model.ErrForbidden):
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "Collections do not belong to the user")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "Collection or product not found")
	case errors.Is(err, model.ErrUnavailable):
		slog.Warn(message, "error", err, "request_id", server.GetRequestID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, message)
	default:
		slog.Error(message, "error", err, "request_id", server.GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
	}
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// maxBodySize wraps a handler with request body size limiting
func maxBodySize(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// withTimeout wraps a handler with a context timeout
func withTimeout(next http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// identify stores the caller's user id, forwarded by the upstream gateway,
// in the request context. A missing or malformed header leaves the request
// anonymous.
func identify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			next(w, r)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			slog.Debug("Ignoring malformed user id", "value", raw)
			next(w, r)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxkeys.KeyUserID, id)))
	}
}

// userID returns the caller's user id, if identify found one.
func userID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(ctxkeys.KeyUserID).(int64)
	return id, ok
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	timeout := h.deps.RequestTimeout

	// Search
	mux.HandleFunc("GET /api/v1/search", withTimeout(identify(h.handleSearch), timeout))
	mux.HandleFunc("GET /api/v1/search/suggestions", withTimeout(h.handleSuggestions, timeout))
	mux.HandleFunc("GET /api/v1/search/meta", withTimeout(h.handleMeta, timeout))

	// Collection membership
	mux.HandleFunc("POST /api/v1/collection/products", withTimeout(identify(maxBodySize(h.handleAddProducts, DefaultMaxBodySize)), timeout))
	mux.HandleFunc("DELETE /api/v1/collection/products", withTimeout(identify(maxBodySize(h.handleRemoveProducts, DefaultMaxBodySize)), timeout))

	// Dev operations (static API key, longer timeout for sync)
	mux.HandleFunc("POST /api/v1/dev/search/sync", withTimeout(maxBodySize(h.dev(h.handleSync), DefaultMaxBodySize), LongRequestTimeout))
	mux.HandleFunc("POST /api/v1/dev/search/meta/refresh", withTimeout(h.dev(h.handleMetaRefresh), timeout))

	// Health and metrics (no auth)
	mux.HandleFunc("GET /health", withTimeout(h.handleHealth, 5*time.Second))
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (h *Handler) dev(handler http.HandlerFunc) http.HandlerFunc {
	guarded := server.RequireAPIKey(h.deps.DevAPIKey)(handler)
	return guarded.ServeHTTP
}
