// Package server exposes the webhook endpoint that triggers council reviews.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
)

const defaultShutdownTimeout = 30 * time.Second

// Server is the webhook listener. Requests inherit the service context so a
// shutdown cancels in-flight handlers.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func NewServer(ctx context.Context, cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *Server {
	shutdown := cfg.Server.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = defaultShutdownTimeout
	}

	return &Server{
		server: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           NewRouter(cfg, dispatcher, logger),
			BaseContext:       func(net.Listener) context.Context { return ctx },
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		shutdownTimeout: shutdown,
		logger:          logger,
	}
}

// Start listens until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("webhook server listening", "address", s.server.Addr, "path", webhookPath)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Stop stops accepting webhooks and waits for in-flight requests.
func (s *Server) Stop() error {
	s.logger.Info("shutting down webhook server", "timeout", s.shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}
