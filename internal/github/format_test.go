package github

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-council/internal/core"
)

func annotation(file string, line int, sev core.Severity, msg string, agents ...string) core.FinalAnnotation {
	a := core.FinalAnnotation{CandidateAnnotation: core.CandidateAnnotation{
		File: file, LineStart: line, LineEnd: line, Severity: sev, Category: "types", Message: msg,
	}}
	for i, agent := range agents {
		a.Sources = append(a.Sources, core.Source{Agent: agent, Unit: i + 1})
	}
	return a
}

func TestFormatInlineComment(t *testing.T) {
	tests := []struct {
		name     string
		ann      core.FinalAnnotation
		contains []string
		excludes []string
	}{
		{
			name: "error uses caution alert",
			ann:  annotation("a.ts", 3, core.SeverityError, "Implicit any in callback", "Amethyst"),
			contains: []string{
				"### 🔴 ERROR | `types` | Amethyst",
				"> [!CAUTION]",
				"> Implicit any in callback",
			},
		},
		{
			name: "code block stays outside alert",
			ann:  annotation("a.ts", 3, core.SeverityWarning, "Prefer this:\n```ts\nconst x: number = 1;\n```", "Citrine"),
			contains: []string{
				"> [!WARNING]",
				"```ts\nconst x: number = 1;\n```",
			},
			excludes: []string{"> ```ts", "> const x"},
		},
		{
			name: "merged annotation lists every agent",
			ann:  annotation("a.ts", 3, core.SeverityWarning, "- [Amethyst] one\n- [Citrine] two", "Amethyst", "Citrine"),
			contains: []string{
				"| Amethyst, Citrine",
				"> - [Amethyst] one",
				"> - [Citrine] two",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatInlineComment(tt.ann)
			for _, c := range tt.contains {
				assert.Contains(t, got, c)
			}
			for _, e := range tt.excludes {
				assert.NotContains(t, got, e)
			}
		})
	}
}

func TestFormatInlineComment_Suggestion(t *testing.T) {
	a := annotation("a.ts", 1, core.SeverityError, "Unsafe cast", "Amethyst")
	a.Suggestion = "Narrow with a type guard"
	assert.Contains(t, formatInlineComment(a), "**Suggestion:**\nNarrow with a type guard")
}

func TestFormatSummary(t *testing.T) {
	report := &core.Report{
		Annotations: []core.FinalAnnotation{annotation("a.ts", 1, core.SeverityError, "Unsafe cast", "Amethyst")},
		Warnings:    []core.Warning{{Kind: core.WarningSkippedOversizeFile, Message: "big.ts too large"}},
		Summary: core.Summary{
			Total:       1,
			BySeverity:  map[core.Severity]int{core.SeverityError: 1},
			ByCategory:  map[string]int{"types": 1},
			Risk:        core.RiskHigh,
			TopConcerns: []core.Concern{{File: "a.ts", Line: 1, Preview: "Unsafe cast"}},
		},
		SummaryText: "1 issue found (1 error); risk HIGH; categories: types",
	}

	body := FormatSummary(report, 0, report.Annotations, "abc123")

	assert.Contains(t, body, "## 💎 Code Council Review")
	assert.Contains(t, body, "**Risk:** 🚨 HIGH")
	assert.Contains(t, body, "| 🔴 error | 1 |")
	assert.Contains(t, body, "**Categories:** `types` (1)")
	assert.Contains(t, body, "- `a.ts:1` Unsafe cast")
	assert.Contains(t, body, "#### Additional comments (1)")
	assert.Contains(t, body, "`skipped_oversize_file` big.ts too large")
	assert.Contains(t, body, ReviewMarker("abc123"))
}

func TestFormatSummary_NoIssues(t *testing.T) {
	body := FormatSummary(&core.Report{SummaryText: "no issues found"}, 0, nil, "")
	assert.Contains(t, body, "No issues found")
	assert.NotContains(t, body, "code-council:sha")
}

func TestConclusion(t *testing.T) {
	assert.Equal(t, "neutral", Conclusion(core.RiskHigh))
	assert.Equal(t, "success", Conclusion(core.RiskMedium))
	assert.Equal(t, "success", Conclusion(core.RiskLow))
}
