package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP API server.
type Server struct {
	handler http.Handler
}

// NewServer creates a server for the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	h, err := NewHandler(ports, opts)
	if err != nil {
		return nil, err
	}
	return &Server{handler: NewRouter(h, opts)}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
