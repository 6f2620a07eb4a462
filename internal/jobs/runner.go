package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/council"
	"github.com/sevigo/code-council/internal/llm"
)

// Runner routes a change set to the council agents, fans generation out over
// the allocated work units and consolidates what comes back.
type Runner struct {
	allocator    *council.Allocator
	consolidator *council.Consolidator
	concurrency  int64
	logger       *slog.Logger
}

// NewRunner builds the pipeline from config, loading a replacement lexicon
// when one is configured.
func NewRunner(cfg config.CouncilConfig, logger *slog.Logger) (*Runner, error) {
	lex := council.DefaultLexicon()
	if cfg.LexiconPath != "" {
		loaded, err := council.LoadLexiconFile(cfg.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
		lex = loaded
	}

	concurrency := int64(cfg.MaxConcurrency)
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Runner{
		allocator: council.NewAllocator(cfg.Limits, lex),
		consolidator: council.NewConsolidator(
			council.WithLexicon(lex),
			council.WithMaxAnnotations(cfg.MaxAnnotations),
			council.WithLogger(logger),
		),
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// Review runs every active agent over files. A failing unit becomes a
// generation_failed warning; only cancellation aborts the review.
func (r *Runner) Review(ctx context.Context, gen core.Generator, files []core.ChangedFile, repo *core.RepoConfig) (*core.Report, error) {
	var (
		units    []core.WorkUnit
		warnings []core.Warning
	)
	for _, agent := range llm.ActiveAgents(repo) {
		routed := llm.RouteFiles(agent, files, repo)
		if len(routed) == 0 {
			continue
		}
		alloc := r.allocator.Allocate(agent.Name, routed)
		units = append(units, alloc.Units...)
		warnings = appendWarnings(warnings, alloc.Warnings)
		r.logger.Debug("allocated work units", "agent", agent.Name, "files", len(routed), "units", len(alloc.Units), "skipped", len(alloc.Skipped))
	}

	results := make([]council.UnitResult, len(units))
	sem := semaphore.NewWeighted(r.concurrency)
	g, gctx := errgroup.WithContext(ctx)

	for i, unit := range units {
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			candidates, err := gen.Generate(gctx, unit)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Warn("work unit failed", "agent", unit.Agent, "unit", unit.Index, "error", err)
			}
			results[i] = council.UnitResult{Unit: unit, Candidates: candidates, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("review cancelled: %w", err)
	}

	return r.consolidator.Consolidate(council.Input{
		Results:  results,
		Warnings: warnings,
		Policy:   repo,
	}), nil
}

// appendWarnings adds allocation warnings, keeping one skipped_oversize_file
// warning per file when several agents route the same file.
func appendWarnings(dst, src []core.Warning) []core.Warning {
	for _, w := range src {
		if w.Kind == core.WarningSkippedOversizeFile && slices.ContainsFunc(dst, func(d core.Warning) bool {
			return d.Kind == w.Kind && d.File == w.File
		}) {
			continue
		}
		dst = append(dst, w)
	}
	return dst
}

// Consolidate runs only the consolidation stage over results gathered
// elsewhere, for example replayed from a file.
func (r *Runner) Consolidate(in council.Input) *core.Report {
	return r.consolidator.Consolidate(in)
}
