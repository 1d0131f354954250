package gateway

import (
	"net/http"
	"time"

	"github.com/KruASe76/look/internal/gateway/rest"
)

// Server is a route registrar for the API layer.
type Server struct {
	rest *rest.Handler
}

// ServerOption is a function that configures a Server.
type ServerOption func(*rest.Deps)

// WithDevAPIKey enables the dev routes behind key.
func WithDevAPIKey(key string) ServerOption {
	return func(d *rest.Deps) {
		d.DevAPIKey = key
	}
}

// NewServer creates a new API Server (route registrar).
func NewServer(deps rest.Deps, opts ...ServerOption) *Server {
	for _, opt := range opts {
		opt(&deps)
	}
	return &Server{rest: rest.NewHandler(deps)}
}

// RegisterRoutes registers all API routes to the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	s.rest.RegisterRoutes(mux)
}

// WithRequestTimeout bounds regular API requests.
func WithRequestTimeout(timeout time.Duration) ServerOption {
	return func(d *rest.Deps) {
		d.RequestTimeout = timeout
	}
}
