package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	metrics := s.metricsHandler()
	r.Method(http.MethodGet, "/metrics", metrics)
	r.Method(http.MethodHead, "/metrics", metrics)

	// Unknown paths and other methods on /metrics both answer 404.
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)

	return r
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeNotFound(w)
}
