// Package council turns the candidate annotations produced by several review
// agents into a small, ranked and non-overlapping set of final annotations.
//
// Everything in this package is synchronous and free of I/O. The same input
// always yields the same report.
package council

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

// UnitResult is the outcome of generating candidates for one work unit.
// A non-nil Err marks the unit as failed; its candidates are ignored.
type UnitResult struct {
	Unit       core.WorkUnit              `json:"unit"`
	Candidates []core.CandidateAnnotation `json:"candidates"`
	Err        error                      `json:"-"`
}

// Input is everything a single consolidation needs.
type Input struct {
	Results []UnitResult
	// Warnings raised before generation, typically by the allocator.
	Warnings []core.Warning
	// Policy is optional. It restricts categories and may override the cap.
	Policy *core.RepoConfig
}

// Consolidator runs the filter, dedup, merge, rank and cap stages.
type Consolidator struct {
	lexicon        *Lexicon
	filter         *QualityFilter
	fingerprinter  *Fingerprinter
	maxAnnotations int
	logger         *slog.Logger
}

type Option func(*Consolidator)

func WithLexicon(lex *Lexicon) Option {
	return func(c *Consolidator) {
		if lex != nil {
			c.lexicon = lex
		}
	}
}

func WithMaxAnnotations(n int) Option {
	return func(c *Consolidator) {
		if n > 0 {
			c.maxAnnotations = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Consolidator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewConsolidator(opts ...Option) *Consolidator {
	c := &Consolidator{
		lexicon:        DefaultLexicon(),
		maxAnnotations: DefaultMaxAnnotations,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.filter = NewQualityFilter(c.lexicon)
	c.fingerprinter = NewFingerprinter(c.lexicon)
	return c
}

// Lexicon returns the tables the consolidator was built with.
func (c *Consolidator) Lexicon() *Lexicon {
	return c.lexicon
}

// Consolidate never fails: anomalies surface as report warnings.
func (c *Consolidator) Consolidate(in Input) *core.Report {
	warnings := append([]core.Warning(nil), in.Warnings...)

	results := append([]UnitResult(nil), in.Results...)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Unit.Source().Less(results[j].Unit.Source())
	})

	var items []*item
	dropped := 0
	for _, r := range results {
		src := r.Unit.Source()
		if r.Err != nil {
			warnings = append(warnings, core.Warning{
				Kind:    core.WarningGenerationFailed,
				Message: fmt.Sprintf("%s: generation failed: %v", src, r.Err),
				Count:   len(r.Unit.Files),
			})
			continue
		}
		for _, cand := range r.Candidates {
			norm, ok := normalize(cand, in.Policy)
			if !ok {
				dropped++
				continue
			}
			items = append(items, newItem(norm, src))
		}
	}

	rankItems(items)
	total := len(items)

	kept := items[:0]
	for _, it := range items {
		if c.filter.Keep(it.ann) {
			kept = append(kept, it)
		}
	}
	filtered := total - len(kept)

	deduped := dedupe(kept, c.fingerprinter)
	merged := mergeOverlaps(deduped)

	limit := c.maxAnnotations
	if in.Policy != nil && in.Policy.Limits.MaxComments > 0 {
		limit = in.Policy.Limits.MaxComments
	}
	final, truncated := capItems(merged, limit)
	if truncated != nil {
		warnings = append(warnings, *truncated)
	}

	annotations := make([]core.FinalAnnotation, len(final))
	for i, it := range final {
		annotations[i] = it.final()
	}

	c.logger.Debug("consolidated annotations",
		"malformed", dropped,
		"candidates", total,
		"filtered", filtered,
		"duplicates", len(kept)-len(deduped),
		"merged", len(deduped)-len(merged),
		"final", len(annotations),
	)

	summary := BuildSummary(annotations)
	if warnings == nil {
		warnings = []core.Warning{}
	}
	return &core.Report{
		Annotations: annotations,
		Warnings:    warnings,
		Summary:     summary,
		SummaryText: SummaryText(summary),
	}
}

// normalize trims a candidate and rejects it when a required field is
// missing or invalid.
func normalize(c core.CandidateAnnotation, policy *core.RepoConfig) (core.CandidateAnnotation, bool) {
	c.File = strings.TrimPrefix(strings.TrimSpace(c.File), "./")
	c.Message = strings.TrimSpace(c.Message)
	c.Suggestion = strings.TrimSpace(c.Suggestion)
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))

	sev, ok := core.ParseSeverity(string(c.Severity))
	if !ok {
		return c, false
	}
	c.Severity = sev

	if c.File == "" || c.Message == "" || c.LineStart < 1 || c.LineStart > c.LineEnd {
		return c, false
	}
	if !core.IsKnownCategory(c.Category) {
		return c, false
	}
	if policy != nil && !policy.CategoryAllowed(c.Category) {
		return c, false
	}
	return c, true
}
