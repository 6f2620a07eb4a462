package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/code-council/internal/core"
)

// DefaultMaxInline bounds how many annotations are posted as inline comments.
const DefaultMaxInline = 20

// Publisher posts a consolidated report as a single pull request review.
type Publisher struct {
	client    Client
	maxInline int
	logger    *slog.Logger
}

var _ core.Publisher = (*Publisher)(nil)

func NewPublisher(client Client, maxInline int, logger *slog.Logger) *Publisher {
	if maxInline <= 0 {
		maxInline = DefaultMaxInline
	}
	return &Publisher{client: client, maxInline: maxInline, logger: logger}
}

// Publish snaps annotations onto commentable diff lines and posts them. If
// GitHub rejects the inline payload the review is retried as summary only.
func (p *Publisher) Publish(ctx context.Context, event *core.GitHubEvent, report *core.Report, files []core.ChangedFile) error {
	patches := make(map[string]string, len(files))
	for _, f := range files {
		patches[f.Path] = f.Patch
	}
	lines := BuildLineMap(patches, p.logger)

	inline, skipped := p.plan(report.Annotations, lines)

	body := FormatSummary(report, len(inline), skipped, event.HeadSHA)
	err := p.client.CreateReview(ctx, event.RepoOwner, event.RepoName, event.PRNumber, event.HeadSHA, body, inline)
	if err == nil {
		p.logger.Info("review published", "repo", event.RepoFullName, "pr", event.PRNumber, "inline", len(inline), "summary_only", len(skipped))
		return nil
	}

	p.logger.Warn("inline review rejected, retrying as summary only",
		"repo", event.RepoFullName, "pr", event.PRNumber, "unprocessable", IsUnprocessable(err), "error", err)

	fallback := FormatSummary(report, 0, report.Annotations, event.HeadSHA)
	if err := p.client.CreateReview(ctx, event.RepoOwner, event.RepoName, event.PRNumber, event.HeadSHA, fallback, nil); err != nil {
		return fmt.Errorf("failed to publish summary-only review: %w", err)
	}
	return nil
}

// plan splits annotations into inline comments and those listed in the summary.
func (p *Publisher) plan(annotations []core.FinalAnnotation, lines LineMap) ([]DraftReviewComment, []core.FinalAnnotation) {
	var inline []DraftReviewComment
	var skipped []core.FinalAnnotation

	for _, a := range annotations {
		line, ok := lines.Snap(a.File, a.LineStart, MaxSnapDistance)
		if !ok || len(inline) >= p.maxInline {
			skipped = append(skipped, a)
			continue
		}

		comment := DraftReviewComment{Path: a.File, Line: line, Body: formatInlineComment(a)}
		if line == a.LineStart && a.LineEnd > a.LineStart && lines.spans(a.File, a.LineStart, a.LineEnd) {
			comment.StartLine = a.LineStart
			comment.Line = a.LineEnd
		}
		inline = append(inline, comment)
	}
	return inline, skipped
}

// spans reports whether every line in [start, end] is commentable.
func (m LineMap) spans(path string, start, end int) bool {
	valid := m[path]
	for l := start; l <= end; l++ {
		if _, ok := valid[l]; !ok {
			return false
		}
	}
	return true
}

// HasReviewedSHA reports whether one of the reviews was posted for headSHA.
func HasReviewedSHA(reviews []*github.PullRequestReview, headSHA string) bool {
	if headSHA == "" {
		return false
	}
	marker := ReviewMarker(headSHA)
	for _, r := range reviews {
		if strings.Contains(r.GetBody(), marker) {
			return true
		}
	}
	return false
}
