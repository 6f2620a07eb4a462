package github

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

const reviewMarkerFormat = "<!-- code-council:sha=%s -->"

// ReviewMarker is the hidden tag embedded in every review body so a commit is
// never reviewed twice.
func ReviewMarker(headSHA string) string {
	return fmt.Sprintf(reviewMarkerFormat, headSHA)
}

// formatInlineComment renders one annotation as a review comment with a
// severity alert and an optional suggestion.
func formatInlineComment(a core.FinalAnnotation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s %s | `%s` | %s\n\n",
		severityEmoji(a.Severity), strings.ToUpper(string(a.Severity)), a.Category, strings.Join(a.Agents(), ", "))

	state := &commentState{}
	for _, line := range strings.Split(a.Message, "\n") {
		processCommentLine(&sb, line, state, severityAlert(a.Severity))
	}

	if a.Suggestion != "" {
		sb.WriteString("\n**Suggestion:**\n")
		sb.WriteString(strings.TrimSpace(a.Suggestion))
		sb.WriteString("\n")
	}
	return sb.String()
}

type commentState struct {
	insideAlert bool
	inCodeBlock bool
}

// processCommentLine wraps prose in a GitHub alert while leaving fenced code
// blocks outside of it.
func processCommentLine(sb *strings.Builder, line string, state *commentState, alertType string) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "```") {
		if !state.inCodeBlock && state.insideAlert {
			state.insideAlert = false
			sb.WriteString("\n")
		}
		state.inCodeBlock = !state.inCodeBlock
		sb.WriteString(line + "\n")
		return
	}
	if state.inCodeBlock {
		sb.WriteString(line + "\n")
		return
	}

	if strings.HasPrefix(trimmed, ">") {
		line = strings.TrimPrefix(strings.TrimPrefix(trimmed, ">"), " ")
	}

	if !state.insideAlert {
		if trimmed == "" {
			return
		}
		fmt.Fprintf(sb, "> [!%s]\n", alertType)
		state.insideAlert = true
	}
	if trimmed == "" {
		sb.WriteString(">\n")
		return
	}
	fmt.Fprintf(sb, "> %s\n", line)
}

// formatSummaryItem renders an annotation that could not be posted inline.
func formatSummaryItem(a core.FinalAnnotation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- `%s:%d` %s **%s** · `%s` · %s\n",
		a.File, a.LineStart, severityEmoji(a.Severity), strings.ToUpper(string(a.Severity)), a.Category, strings.Join(a.Agents(), ", "))
	for _, line := range strings.Split(strings.TrimSpace(a.Message), "\n") {
		fmt.Fprintf(&sb, "  %s\n", line)
	}
	if a.Suggestion != "" {
		fmt.Fprintf(&sb, "  **Suggestion:** %s\n", strings.TrimSpace(a.Suggestion))
	}
	return sb.String()
}

// FormatSummary renders the review body: risk, statistics, top concerns,
// annotations that were not posted inline, and consolidation warnings.
func FormatSummary(report *core.Report, posted int, skipped []core.FinalAnnotation, headSHA string) string {
	var sb strings.Builder
	s := report.Summary

	sb.WriteString("## 💎 Code Council Review\n\n")
	if s.Total == 0 {
		sb.WriteString("✅ No issues found.\n\n")
	} else {
		fmt.Fprintf(&sb, "%s\n\n", report.SummaryText)
		fmt.Fprintf(&sb, "**Risk:** %s %s\n\n", riskEmoji(s.Risk), s.Risk)

		sb.WriteString("| Severity | Count |\n")
		sb.WriteString("|----------|-------|\n")
		for _, sev := range []core.Severity{core.SeverityError, core.SeverityWarning, core.SeverityInfo} {
			if n := s.BySeverity[sev]; n > 0 {
				fmt.Fprintf(&sb, "| %s %s | %d |\n", severityEmoji(sev), sev, n)
			}
		}
		sb.WriteString("\n")

		if len(s.ByCategory) > 0 {
			cats := make([]string, 0, len(s.ByCategory))
			for c := range s.ByCategory {
				cats = append(cats, c)
			}
			sort.Strings(cats)
			parts := make([]string, len(cats))
			for i, c := range cats {
				parts[i] = fmt.Sprintf("`%s` (%d)", c, s.ByCategory[c])
			}
			fmt.Fprintf(&sb, "**Categories:** %s\n\n", strings.Join(parts, ", "))
		}

		if len(s.TopConcerns) > 0 {
			sb.WriteString("#### Top concerns\n\n")
			for _, c := range s.TopConcerns {
				fmt.Fprintf(&sb, "- `%s:%d` %s\n", c.File, c.Line, c.Preview)
			}
			sb.WriteString("\n")
		}

		fmt.Fprintf(&sb, "**Inline comments posted:** %d\n\n", posted)
	}

	if len(skipped) > 0 {
		fmt.Fprintf(&sb, "#### Additional comments (%d)\n\n", len(skipped))
		for _, a := range skipped {
			sb.WriteString(formatSummaryItem(a))
		}
		sb.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("<details>\n<summary>Review notes</summary>\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&sb, "- `%s` %s\n", w.Kind, w.Message)
		}
		sb.WriteString("\n</details>\n\n")
	}

	fmt.Fprintf(&sb, "_Triggered via `%s`_\n", core.ReviewCommand)
	if headSHA != "" {
		sb.WriteString(ReviewMarker(headSHA))
		sb.WriteString("\n")
	}
	return sb.String()
}

func severityEmoji(severity core.Severity) string {
	switch severity {
	case core.SeverityError:
		return "🔴"
	case core.SeverityWarning:
		return "🟡"
	case core.SeverityInfo:
		return "🔵"
	default:
		return "⚪"
	}
}

// severityAlert returns the GitHub alert type for a severity.
func severityAlert(severity core.Severity) string {
	switch severity {
	case core.SeverityError:
		return "CAUTION"
	case core.SeverityWarning:
		return "WARNING"
	default:
		return "NOTE"
	}
}

func riskEmoji(risk core.RiskLevel) string {
	switch risk {
	case core.RiskHigh:
		return "🚨"
	case core.RiskMedium:
		return "⚠️"
	default:
		return "✅"
	}
}
