package app

import (
	"log/slog"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/jobs"
)

// Council bundles what the command-line tools need to run a review outside
// the webhook service.
type Council struct {
	Cfg        *config.Config
	Logger     *slog.Logger
	Runner     *jobs.Runner
	Generators core.GeneratorFactory
}

func NewCouncil(cfg *config.Config, runner *jobs.Runner, generators core.GeneratorFactory, logger *slog.Logger) *Council {
	return &Council{
		Cfg:        cfg,
		Logger:     logger,
		Runner:     runner,
		Generators: generators,
	}
}
