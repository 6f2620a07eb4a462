package council

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

const (
	maxTopConcerns = 3
	previewRunes   = 80
	// More warnings than this raise the risk to MEDIUM.
	mediumRiskWarnings = 2
)

// BuildSummary aggregates statistics over final annotations.
func BuildSummary(annotations []core.FinalAnnotation) core.Summary {
	s := core.Summary{
		Total: len(annotations),
		BySeverity: map[core.Severity]int{
			core.SeverityError:   0,
			core.SeverityWarning: 0,
			core.SeverityInfo:    0,
		},
		ByCategory: map[string]int{},
		Risk:       core.RiskLow,
	}

	for _, a := range annotations {
		s.BySeverity[a.Severity]++
		s.ByCategory[a.Category]++
		if a.Severity == core.SeverityError && len(s.TopConcerns) < maxTopConcerns {
			s.TopConcerns = append(s.TopConcerns, core.Concern{
				File:    a.File,
				Line:    a.LineStart,
				Preview: preview(a.Message),
			})
		}
	}

	switch {
	case s.BySeverity[core.SeverityError] > 0:
		s.Risk = core.RiskHigh
	case s.BySeverity[core.SeverityWarning] > mediumRiskWarnings:
		s.Risk = core.RiskMedium
	}
	return s
}

func preview(message string) string {
	// Merged messages are bulleted; the first line is enough for a preview.
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		message = message[:idx] + " ..."
	}
	r := []rune(message)
	if len(r) <= previewRunes {
		return message
	}
	return string(r[:previewRunes]) + "..."
}

// SummaryText renders a one-line headline for a summary.
func SummaryText(s core.Summary) string {
	if s.Total == 0 {
		return "no issues found"
	}

	var counts []string
	for _, sev := range []core.Severity{core.SeverityError, core.SeverityWarning, core.SeverityInfo} {
		if n := s.BySeverity[sev]; n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, plural(string(sev), n)))
		}
	}

	noun := "issue"
	if s.Total != 1 {
		noun = "issues"
	}
	text := fmt.Sprintf("%d %s found (%s); risk %s", s.Total, noun, strings.Join(counts, ", "), s.Risk)

	if len(s.ByCategory) > 0 {
		cats := make([]string, 0, len(s.ByCategory))
		for c := range s.ByCategory {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		text += "; categories: " + strings.Join(cats, ", ")
	}
	return text
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
