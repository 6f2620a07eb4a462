package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/council"
	"github.com/sevigo/code-council/internal/db"
	"github.com/sevigo/code-council/internal/github"
	"github.com/sevigo/code-council/internal/gitutil"
	"github.com/sevigo/code-council/internal/storage"
)

const storeTimeout = 10 * time.Second

func loadReportFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return reportLoadedMsg{err: fmt.Errorf("failed to read report: %w", err)}
		}
		var report core.Report
		if err := json.Unmarshal(data, &report); err != nil {
			return reportLoadedMsg{err: fmt.Errorf("failed to decode report: %w", err)}
		}
		return reportLoadedMsg{source: path, report: &report}
	}
}

// loadStoredReviewCmd fetches the latest persisted review of a pull request.
func loadStoredReviewCmd(cfg *config.Config, logger *slog.Logger, ref string) tea.Cmd {
	return func() tea.Msg {
		owner, repo, number, err := gitutil.ParsePullRequestURL(ref)
		if err != nil {
			return reportLoadedMsg{err: err}
		}

		conn, closeDB, err := db.NewDatabase(&cfg.Database, logger)
		if err != nil {
			return reportLoadedMsg{err: err}
		}
		defer closeDB()

		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		fullName := owner + "/" + repo
		review, err := storage.NewStore(conn.DB).GetLatestReviewForPR(ctx, fullName, number)
		if errors.Is(err, storage.ErrNotFound) {
			return reportLoadedMsg{err: fmt.Errorf("no stored review for %s#%d", fullName, number)}
		}
		if err != nil {
			return reportLoadedMsg{err: err}
		}

		var report core.Report
		if err := json.Unmarshal(review.ReportJSON, &report); err != nil {
			return reportLoadedMsg{err: fmt.Errorf("failed to decode stored report %s: %w", review.RunID, err)}
		}
		source := fmt.Sprintf("%s#%d @ %.7s (%s)", fullName, number, review.HeadSHA, review.CreatedAt.Format(time.DateTime))
		return reportLoadedMsg{source: source, report: &report}
	}
}

// reportFilter narrows the annotations shown in the viewer.
type reportFilter struct {
	severity core.Severity
	category string
}

func (f reportFilter) active() bool {
	return f.severity != "" || f.category != ""
}

func (f reportFilter) String() string {
	switch {
	case f.severity != "" && f.category != "":
		return fmt.Sprintf("%s+ · %s", f.severity, f.category)
	case f.severity != "":
		return string(f.severity) + "+"
	case f.category != "":
		return f.category
	default:
		return "all"
	}
}

// apply returns a copy of report holding only matching annotations, with the
// summary recomputed for them.
func (f reportFilter) apply(report *core.Report) *core.Report {
	if !f.active() {
		return report
	}
	var kept []core.FinalAnnotation
	for _, a := range report.Annotations {
		if f.severity != "" && a.Severity.Rank() < f.severity.Rank() {
			continue
		}
		if f.category != "" && a.Category != f.category {
			continue
		}
		kept = append(kept, a)
	}
	summary := council.BuildSummary(kept)
	return &core.Report{
		Annotations: kept,
		Warnings:    report.Warnings,
		Summary:     summary,
		SummaryText: council.SummaryText(summary),
	}
}

// renderReport formats the report the way it is published and renders the
// markdown for the terminal.
func renderReport(report *core.Report, width int) (string, error) {
	md := github.FormatSummary(report, 0, report.Annotations, "")
	if width < 20 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	return r.Render(md)
}
