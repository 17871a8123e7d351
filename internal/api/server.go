package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/deliverability-engine/internal/config"
)

// Server wraps the HTTP server for the engine API.
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a server serving handler.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	s := &Server{config: cfg, handler: handler}
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Addr returns host:port from the server config.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.GetHost(), s.config.Port)
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
