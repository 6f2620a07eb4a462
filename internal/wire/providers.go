package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/wire"
	"github.com/jmoiron/sqlx"
	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/code-council/internal/app"
	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/db"
	"github.com/sevigo/code-council/internal/github"
	"github.com/sevigo/code-council/internal/jobs"
	"github.com/sevigo/code-council/internal/llm"
	"github.com/sevigo/code-council/internal/logger"
	"github.com/sevigo/code-council/internal/ratelimit"
	"github.com/sevigo/code-council/internal/server"
	"github.com/sevigo/code-council/internal/storage"
)

// reviewSet builds the review pipeline shared by the service and the CLI.
var reviewSet = wire.NewSet(
	llm.NewPromptManager,
	provideLoggerConfig,
	provideLogWriter,
	provideSlogLogger,
	provideModel,
	provideGeneratorFactory,
	provideRunner,
)

// AppSet provides every component of the webhook service.
var AppSet = wire.NewSet(
	reviewSet,
	app.NewApp,
	server.NewServer,
	config.LoadConfig,
	db.NewDatabase,
	storage.NewStore,
	github.NewAppClientFactory,
	jobs.NewReviewJob,
	provideDBConfig,
	provideSQLX,
	provideStateStore,
	provideRateLimiter,
	provideDispatcher,
)

// CouncilSet provides the standalone review pipeline used by the CLI.
var CouncilSet = wire.NewSet(
	reviewSet,
	app.NewCouncil,
	config.Load,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg logger.Config) (io.Writer, func()) {
	return logger.Writer(cfg)
}

func provideSlogLogger(cfg logger.Config, writer io.Writer) *slog.Logger {
	l := logger.NewLogger(cfg, writer)
	slog.SetDefault(l)
	return l
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideSQLX(conn *db.DB) *sqlx.DB {
	return conn.DB
}

func provideStateStore(cfg *config.Config, conn *sqlx.DB, logger *slog.Logger) (core.StateStore, error) {
	switch cfg.State.Backend {
	case "memory":
		logger.Info("using in-memory delivery state", "ttl", cfg.State.TTL)
		return storage.NewMemoryStateStore(cfg.State.TTL), nil
	case "postgres":
		logger.Info("using postgres delivery state", "ttl", cfg.State.TTL)
		return storage.NewPostgresStateStore(conn, cfg.State.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported state backend %q", cfg.State.Backend)
	}
}

func provideRateLimiter(cfg *config.Config) jobs.RateLimiter {
	return ratelimit.NewInstallationLimiter(cfg.RateLimit)
}

func provideModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	return llm.NewModel(ctx, cfg.AI, logger)
}

func provideGeneratorFactory(model llms.Model, prompts *llm.PromptManager, cfg *config.Config, logger *slog.Logger) core.GeneratorFactory {
	return llm.NewGenerator(model, prompts, cfg.AI, logger)
}

func provideRunner(cfg *config.Config, logger *slog.Logger) (*jobs.Runner, error) {
	return jobs.NewRunner(cfg.Council, logger)
}

func provideDispatcher(job core.Job, cfg *config.Config, logger *slog.Logger) core.JobDispatcher {
	return jobs.NewDispatcher(job, cfg.Server, logger)
}
