package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/window-exporter/internal/infrastructure/logging"
)

// metricsHandler serves the gatherer in the Prometheus text format. A gather
// or encoding error yields a 500 instead of a partial body.
//
// The Accept header is dropped before promhttp sees it, so every scrape gets
// the text format regardless of what the client negotiates.
func (s *Server) metricsHandler() http.Handler {
	h := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		ErrorLog:      promErrorLog{logger: s.logger},
		ErrorHandling: promhttp.HTTPErrorOnError,
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.Clone(r.Context())
		r.Header.Del("Accept")
		h.ServeHTTP(w, r)
	})
}

// promErrorLog adapts the logger to promhttp's Println-style logger.
type promErrorLog struct {
	logger *logging.Logger
}

func (l promErrorLog) Println(v ...any) {
	l.logger.Error("serving metrics failed", "error", fmt.Sprint(v...))
}
