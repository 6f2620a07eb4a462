package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
)

const (
	initialRetryDelay = 2 * time.Second
	maxRetryDelay     = 30 * time.Second
)

// completer is the part of a language model the generator needs.
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type modelCompleter struct {
	model llms.Model
}

func (m modelCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return m.model.Call(ctx, prompt)
}

// Generator asks a model for candidate annotations, one call per work unit.
type Generator struct {
	model         completer
	prompts       *PromptManager
	provider      ModelProvider
	timeout       time.Duration
	maxRetries    int
	maxCandidates int
	retryDelay    time.Duration
	repo          *core.RepoConfig
	logger        *slog.Logger
}

var (
	_ core.Generator        = (*Generator)(nil)
	_ core.GeneratorFactory = (*Generator)(nil)
)

func NewGenerator(model llms.Model, prompts *PromptManager, cfg config.AIConfig, logger *slog.Logger) *Generator {
	return newGenerator(modelCompleter{model: model}, prompts, cfg, logger)
}

func newGenerator(model completer, prompts *PromptManager, cfg config.AIConfig, logger *slog.Logger) *Generator {
	maxCandidates := cfg.MaxCandidatesPerUnit
	if maxCandidates <= 0 {
		maxCandidates = 5
	}
	return &Generator{
		model:         model,
		prompts:       prompts,
		provider:      ModelProvider(cfg.Provider),
		timeout:       cfg.Timeout,
		maxRetries:    cfg.MaxRetries,
		maxCandidates: maxCandidates,
		retryDelay:    initialRetryDelay,
		repo:          core.DefaultRepoConfig(),
		logger:        logger,
	}
}

// ForRepo returns a copy of the generator that prompts with the conventions
// and category policy of cfg.
func (g *Generator) ForRepo(cfg *core.RepoConfig) core.Generator {
	bound := *g
	if cfg != nil {
		bound.repo = cfg
	}
	return &bound
}

// Generate renders the agent prompt for the unit, calls the model and parses
// its answer. Transport failures and unparseable answers are retried with
// backoff. The returned candidates carry no source.
func (g *Generator) Generate(ctx context.Context, unit core.WorkUnit) ([]core.CandidateAnnotation, error) {
	agent, ok := AgentByName(unit.Agent)
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", unit.Agent)
	}

	prompt, err := g.prompts.Render(agent.Prompt, g.provider, g.promptData(agent, unit))
	if err != nil {
		return nil, fmt.Errorf("failed to render %s prompt: %w", agent.Name, err)
	}

	var candidates []core.CandidateAnnotation
	err = retry.Do(
		func() error {
			response, err := g.call(ctx, prompt)
			if err != nil {
				return err
			}
			candidates, err = ParseCandidates(response)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(g.maxRetries)+1),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(g.retryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Warn("generation attempt failed", "agent", agent.Name, "unit", unit.Index, "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%s unit %d: %w", agent.Name, unit.Index, err)
	}

	if len(candidates) > g.maxCandidates {
		g.logger.Debug("trimmed model output", "agent", agent.Name, "unit", unit.Index, "returned", len(candidates), "kept", g.maxCandidates)
		candidates = candidates[:g.maxCandidates]
	}
	return candidates, nil
}

func (g *Generator) promptData(agent Agent, unit core.WorkUnit) PromptData {
	categories := core.KnownCategories
	if len(g.repo.Categories) > 0 {
		categories = g.repo.Categories
	}
	return PromptData{
		Agent:           agent.Name,
		Diff:            FormatUnitDiff(unit),
		MaxComments:     g.maxCandidates,
		Rules:           RulesContext(g.repo),
		DefaultSeverity: string(ruleSeverity("", g.repo)),
		Categories:      strings.Join(categories, ", "),
	}
}

// call wraps a model call with a hard timeout so a hung client cannot block a unit.
func (g *Generator) call(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)
	go func() {
		resp, err := g.model.Complete(ctx, prompt)
		resultCh <- result{resp, err}
	}()

	select {
	case res := <-resultCh:
		return res.resp, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("generation timed out after %s: %w", g.timeout, ctx.Err())
		}
		return "", ctx.Err()
	}
}
