package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevigo/code-council/internal/wire"
)

func main() {
	if err := run(); err != nil {
		slog.Error("code-council server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize code-council: %w", err)
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	var startErr error
	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case startErr = <-errCh:
		if startErr == nil {
			return nil
		}
		slog.Error("webhook server stopped", "error", startErr)
	}

	if err := app.Stop(); err != nil {
		return fmt.Errorf("failed to stop code-council: %w", err)
	}
	return startErr
}
