// Package app holds the running service: the webhook server and the review
// dispatcher behind it.
package app

import (
	"log/slog"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/server"
)

// App holds the main application components.
type App struct {
	cfg        *config.Config
	server     *server.Server
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewApp assembles the application from already constructed components.
func NewApp(cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, logger *slog.Logger) *App {
	return &App{
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting Code Council",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Server.MaxWorkers,
		"provider", a.cfg.AI.Provider,
		"model", a.cfg.AI.Model,
		"state_backend", a.cfg.State.Backend)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down Code Council services")

	// Stop accepting webhooks before draining the queue.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("Code Council stopped successfully")
	return nil
}
