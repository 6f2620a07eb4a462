package council

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-council/internal/core"
)

func unit(agent string, index int, files ...string) core.WorkUnit {
	u := core.WorkUnit{Agent: agent, Index: index}
	for _, f := range files {
		u.Files = append(u.Files, core.ChangedFile{Path: f, Patch: "@@"})
	}
	return u
}

func cand(file string, start, end int, sev core.Severity, category, msg string) core.CandidateAnnotation {
	return core.CandidateAnnotation{
		File:      file,
		LineStart: start,
		LineEnd:   end,
		Severity:  sev,
		Category:  category,
		Message:   msg,
	}
}

func TestConsolidate_MergesOverlappingCandidates(t *testing.T) {
	c := NewConsolidator()

	report := c.Consolidate(Input{Results: []UnitResult{
		{
			Unit: unit("Amethyst", 1, "src/a.ts"),
			Candidates: []core.CandidateAnnotation{
				{File: "src/a.ts", LineStart: 10, LineEnd: 12, Severity: core.SeverityError, Category: "types",
					Message: "Return type is implicitly any", Suggestion: "Annotate the return type"},
			},
		},
		{
			Unit: unit("Citrine", 1, "src/a.ts"),
			Candidates: []core.CandidateAnnotation{
				cand("src/a.ts", 11, 11, core.SeverityWarning, "perf", "Inline object literal recreated every render"),
			},
		},
	}})

	require.Len(t, report.Annotations, 1)
	got := report.Annotations[0]
	assert.Equal(t, core.SeverityError, got.Severity)
	assert.Equal(t, 10, got.LineStart)
	assert.Equal(t, 12, got.LineEnd)
	assert.True(t, got.Merged)
	assert.Empty(t, got.Suggestion)
	assert.Equal(t, []core.Source{{Agent: "Amethyst", Unit: 1}, {Agent: "Citrine", Unit: 1}}, got.Sources)
	assert.Equal(t,
		"- [Amethyst#1] Return type is implicitly any\n- [Citrine#1] Inline object literal recreated every render",
		got.Message)
	assert.Equal(t, core.RiskHigh, report.Summary.Risk)
}

func TestConsolidate_MergesAdjacentCandidates(t *testing.T) {
	c := NewConsolidator()

	report := c.Consolidate(Input{Results: []UnitResult{
		{Unit: unit("Citrine", 1, "a.ts"), Candidates: []core.CandidateAnnotation{
			cand("a.ts", 10, 10, core.SeverityWarning, "perf", "Handler recreated on every render"),
		}},
		{Unit: unit("Amethyst", 1, "a.ts"), Candidates: []core.CandidateAnnotation{
			cand("a.ts", 11, 12, core.SeverityError, "types", "Handler argument is implicitly any"),
		}},
	}})

	require.Len(t, report.Annotations, 1)
	got := report.Annotations[0]
	assert.Equal(t, core.SeverityError, got.Severity)
	assert.Equal(t, 10, got.LineStart)
	assert.Equal(t, 12, got.LineEnd)
	assert.True(t, got.Merged)
	assert.Equal(t, []core.Source{{Agent: "Amethyst", Unit: 1}, {Agent: "Citrine", Unit: 1}}, got.Sources)
}

func TestConsolidate_KeepsSeparatedCandidates(t *testing.T) {
	c := NewConsolidator()

	report := c.Consolidate(Input{Results: []UnitResult{{
		Unit: unit("Amethyst", 1, "a.ts"),
		Candidates: []core.CandidateAnnotation{
			cand("a.ts", 10, 10, core.SeverityError, "types", "Unchecked cast to User"),
			cand("a.ts", 12, 12, core.SeverityError, "types", "Promise result is never awaited"),
		},
	}}})

	require.Len(t, report.Annotations, 2)
	assert.False(t, report.Annotations[0].Merged)
	assert.False(t, report.Annotations[1].Merged)
}

func TestConsolidate_MergedBulletsKeepEachUnit(t *testing.T) {
	c := NewConsolidator()

	report := c.Consolidate(Input{Results: []UnitResult{
		{Unit: unit("Amethyst", 1, "a.ts"), Candidates: []core.CandidateAnnotation{
			cand("a.ts", 5, 6, core.SeverityError, "types", "Missing return type"),
		}},
		{Unit: unit("Amethyst", 2, "a.ts"), Candidates: []core.CandidateAnnotation{
			cand("a.ts", 6, 9, core.SeverityWarning, "arch", "Missing return type"),
		}},
	}})

	require.Len(t, report.Annotations, 1)
	assert.Equal(t, "- [Amethyst#1] Missing return type\n- [Amethyst#2] Missing return type", report.Annotations[0].Message)
}

func TestConsolidate_HedgedCandidateYieldsEmptyReport(t *testing.T) {
	c := NewConsolidator()

	report := c.Consolidate(Input{Results: []UnitResult{{
		Unit:       unit("Citrine", 1, "src/list.tsx"),
		Candidates: []core.CandidateAnnotation{cand("src/list.tsx", 4, 4, core.SeverityWarning, "perf", "Consider using useMemo here")},
	}}})

	assert.Empty(t, report.Annotations)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, core.RiskLow, report.Summary.Risk)
	assert.Equal(t, "no issues found", report.SummaryText)
}

func TestConsolidate_CapsOutput(t *testing.T) {
	c := NewConsolidator()

	var cands []core.CandidateAnnotation
	for i := 7; i >= 1; i-- {
		cands = append(cands, cand("src/api.ts", i*10, i*10, core.SeverityError, "types",
			fmt.Sprintf("Unsafe cast of payload field %d to string", i)))
	}
	policy := core.DefaultRepoConfig()
	policy.Limits.MaxComments = 5

	report := c.Consolidate(Input{
		Results: []UnitResult{{Unit: unit("Amethyst", 1, "src/api.ts"), Candidates: cands}},
		Policy:  policy,
	})

	require.Len(t, report.Annotations, 5)
	for i, a := range report.Annotations {
		assert.Equal(t, (i+1)*10, a.LineStart)
	}
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, core.WarningTruncatedOutput, report.Warnings[0].Kind)
	assert.Equal(t, 2, report.Warnings[0].Count)
}

func TestConsolidate_DefaultCap(t *testing.T) {
	c := NewConsolidator(WithMaxAnnotations(3))

	var cands []core.CandidateAnnotation
	for i := 1; i <= 4; i++ {
		cands = append(cands, cand("src/api.ts", i*10, i*10, core.SeverityWarning, "types",
			fmt.Sprintf("Unused generic parameter T%d", i)))
	}

	report := c.Consolidate(Input{Results: []UnitResult{{Unit: unit("Amethyst", 1), Candidates: cands}}})

	assert.Len(t, report.Annotations, 3)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 1, report.Warnings[0].Count)
}

func TestConsolidate_FingerprintDuplicates(t *testing.T) {
	c := NewConsolidator()

	report := c.Consolidate(Input{Results: []UnitResult{
		{Unit: unit("Citrine", 1), Candidates: []core.CandidateAnnotation{
			cand("src/a.ts", 4, 4, core.SeverityWarning, "types", "This variable is unused"),
		}},
		{Unit: unit("Amethyst", 1), Candidates: []core.CandidateAnnotation{
			cand("src/a.ts", 3, 3, core.SeverityWarning, "types", "The variable is unused"),
		}},
	}})

	require.Len(t, report.Annotations, 1)
	got := report.Annotations[0]
	assert.Equal(t, 3, got.LineStart)
	assert.Equal(t, "The variable is unused", got.Message)
	assert.False(t, got.Merged)
	assert.Equal(t, []core.Source{{Agent: "Amethyst", Unit: 1}, {Agent: "Citrine", Unit: 1}}, got.Sources)
}

func TestConsolidate_MultipleOverlapsMergeIntoFirst(t *testing.T) {
	c := NewConsolidator()

	report := c.Consolidate(Input{Results: []UnitResult{{
		Unit: unit("Amethyst", 1),
		Candidates: []core.CandidateAnnotation{
			cand("src/a.ts", 1, 2, core.SeverityError, "types", "Implicit any in parameter"),
			cand("src/a.ts", 5, 6, core.SeverityError, "types", "Non-null assertion on optional value"),
			cand("src/a.ts", 2, 5, core.SeverityWarning, "arch", "Function mixes parsing and rendering"),
		},
	}}})

	require.Len(t, report.Annotations, 2)
	first, second := report.Annotations[0], report.Annotations[1]
	assert.Equal(t, 1, first.LineStart)
	assert.Equal(t, 2, first.LineEnd)
	assert.True(t, first.Merged)
	assert.Contains(t, first.Message, "Function mixes parsing and rendering")
	assert.Equal(t, 5, second.LineStart)
	assert.Equal(t, 6, second.LineEnd)
	assert.False(t, second.Merged)
}

func TestConsolidate_DropsMalformedCandidates(t *testing.T) {
	c := NewConsolidator()
	policy := core.DefaultRepoConfig()
	policy.Categories = []string{"types", "perf"}

	report := c.Consolidate(Input{
		Results: []UnitResult{{Unit: unit("Amethyst", 1), Candidates: []core.CandidateAnnotation{
			cand("", 1, 1, core.SeverityError, "types", "Missing file"),
			cand("src/a.ts", 0, 1, core.SeverityError, "types", "Line zero"),
			cand("src/a.ts", 5, 4, core.SeverityError, "types", "Inverted range"),
			cand("src/a.ts", 1, 1, "critical", "types", "Unknown severity"),
			cand("src/a.ts", 1, 1, core.SeverityError, "style", "Unknown category"),
			cand("src/a.ts", 1, 1, core.SeverityError, "security", "Category not allowed"),
			cand("src/a.ts", 1, 1, core.SeverityError, "types", "   "),
			cand("./src/b.ts", 8, 9, " Error ", " Types ", "Untyped event handler"),
		}}},
		Policy: policy,
	})

	require.Len(t, report.Annotations, 1)
	got := report.Annotations[0]
	assert.Equal(t, "src/b.ts", got.File)
	assert.Equal(t, core.SeverityError, got.Severity)
	assert.Equal(t, "types", got.Category)
}

func TestConsolidate_GenerationFailureBecomesWarning(t *testing.T) {
	c := NewConsolidator()
	upstream := core.Warning{Kind: core.WarningSkippedOversizeFile, File: "big.ts", Message: "too large"}

	report := c.Consolidate(Input{
		Results: []UnitResult{
			{Unit: unit("Citrine", 2, "a.tsx", "b.tsx"), Err: errors.New("model timeout")},
			{Unit: unit("Amethyst", 1, "c.ts"), Candidates: []core.CandidateAnnotation{
				cand("c.ts", 3, 3, core.SeverityWarning, "types", "Unused import"),
			}},
		},
		Warnings: []core.Warning{upstream},
	})

	require.Len(t, report.Warnings, 2)
	assert.Equal(t, upstream, report.Warnings[0])
	assert.Equal(t, core.WarningGenerationFailed, report.Warnings[1].Kind)
	assert.Equal(t, 2, report.Warnings[1].Count)
	assert.Contains(t, report.Warnings[1].Message, "Citrine#2")
	assert.Len(t, report.Annotations, 1)
}

func TestConsolidate_InvariantsAndDeterminism(t *testing.T) {
	c := NewConsolidator()

	files := []string{"src/a.ts", "src/b.tsx", "src/c.ts"}
	severities := []core.Severity{core.SeverityError, core.SeverityWarning}
	categories := []string{"types", "perf", "arch"}

	var results []UnitResult
	for u := 1; u <= 3; u++ {
		for _, agent := range []string{"Amethyst", "Citrine"} {
			var cands []core.CandidateAnnotation
			for i := 0; i < 12; i++ {
				start := (i*7+u*3)%40 + 1
				cands = append(cands, cand(
					files[(i+u)%len(files)],
					start,
					start+(i%4),
					severities[(i+u)%2],
					categories[i%3],
					fmt.Sprintf("Issue %d reported by %s in unit %d", i, agent, u),
				))
			}
			results = append(results, UnitResult{Unit: unit(agent, u), Candidates: cands})
		}
	}

	report := c.Consolidate(Input{Results: results})
	assert.LessOrEqual(t, len(report.Annotations), DefaultMaxAnnotations)

	for i, a := range report.Annotations {
		for j, b := range report.Annotations {
			if i == j || a.File != b.File {
				continue
			}
			touch := a.LineStart <= b.LineEnd+1 && b.LineStart <= a.LineEnd+1
			assert.False(t, touch, "annotations %d and %d overlap", i, j)
		}
		if i == 0 {
			continue
		}
		prev := report.Annotations[i-1]
		ordered := prev.Severity.Rank() > a.Severity.Rank() ||
			(prev.Severity == a.Severity && (prev.File < a.File ||
				(prev.File == a.File && prev.LineStart <= a.LineStart)))
		assert.True(t, ordered, "annotation %d out of order", i)
	}

	reversed := make([]UnitResult, len(results))
	for i, r := range results {
		reversed[len(results)-1-i] = r
	}
	again := c.Consolidate(Input{Results: reversed})

	want, err := json.Marshal(report)
	require.NoError(t, err)
	got, err := json.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestConsolidate_EmptyInput(t *testing.T) {
	report := NewConsolidator().Consolidate(Input{})

	assert.Empty(t, report.Annotations)
	assert.NotNil(t, report.Warnings)
	assert.Equal(t, 0, report.Summary.Total)
	assert.Equal(t, core.RiskLow, report.Summary.Risk)
	assert.Equal(t, "no issues found", report.SummaryText)
}
