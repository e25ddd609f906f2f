package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/window-exporter/internal/infrastructure/config"
	"github.com/nerrad567/window-exporter/internal/infrastructure/logging"
)

// ErrListen is returned by Start when the listener cannot be bound.
var ErrListen = errors.New("api: cannot listen")

// RequestCounter records served requests by status code.
type RequestCounter interface {
	CountRequest(code int)
}

// Deps holds the dependencies required by the server.
type Deps struct {
	Config   config.HTTPConfig
	Logger   *logging.Logger
	Gatherer prometheus.Gatherer
	Requests RequestCounter // optional
}

// Server is the metrics HTTP server.
type Server struct {
	cfg      config.HTTPConfig
	logger   *logging.Logger
	gatherer prometheus.Gatherer
	requests RequestCounter

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	served   chan struct{}
}

// New creates a server. It does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Gatherer == nil {
		return nil, fmt.Errorf("metrics gatherer is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger.With("component", "http"),
		gatherer: deps.Gatherer,
		requests: deps.Requests,
	}, nil
}

// Start binds the listener and serves in the background.
//
// Binding happens before Start returns, so a port already in use aborts
// startup instead of leaving the process running without an endpoint.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", ErrListen, addr, err)
	}

	s.listener = ln
	s.served = make(chan struct{})
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.ReadTimeout(),
		WriteTimeout:      s.cfg.WriteTimeout(),
		IdleTimeout:       s.cfg.IdleTimeout(),
	}

	srv, served := s.server, s.served
	go func() {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.logger.Info("server started", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, served := s.server, s.served
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	select {
	case <-served:
	case <-ctx.Done():
		return fmt.Errorf("waiting for HTTP server: %w", ctx.Err())
	}

	s.logger.Info("server shut down successfully")
	return nil
}
