package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/council"
	"github.com/sevigo/code-council/mocks"
)

func TestRunner_Review(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	runner, err := NewRunner(config.CouncilConfig{MaxConcurrency: 3, MaxAnnotations: 20}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	files := []core.ChangedFile{
		{Path: "src/a.ts", Patch: tsPatch},
		{Path: "styles/site.scss", Patch: "@@ -0,0 +1 @@\n+.x {}"},
	}
	repo := core.DefaultRepoConfig()
	repo.Policy = []core.PolicyRule{{ID: "bem", Severity: core.SeverityWarning, Text: "Classes use the c- prefix"}}

	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, unit core.WorkUnit) ([]core.CandidateAnnotation, error) {
			switch unit.Agent {
			case "Amethyst":
				return []core.CandidateAnnotation{{File: "src/a.ts", LineStart: 2, LineEnd: 2, Severity: "warning", Category: "types", Message: "name is typed any"}}, nil
			case "Citrine":
				return nil, errors.New("model timeout")
			default:
				assert.Equal(t, []string{"src/a.ts", "styles/site.scss"}, unit.Paths())
				return []core.CandidateAnnotation{{File: "styles/site.scss", LineStart: 1, LineEnd: 1, Severity: "warning", Category: "consistency", Message: "Class .x lacks the c- prefix"}}, nil
			}
		}).Times(3)

	report, err := runner.Review(context.Background(), gen, files, repo)
	require.NoError(t, err)

	require.Len(t, report.Annotations, 2)
	assert.Equal(t, "src/a.ts", report.Annotations[0].File)
	assert.Equal(t, "styles/site.scss", report.Annotations[1].File)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, core.WarningGenerationFailed, report.Warnings[0].Kind)
}

func TestRunner_OversizeFileWarnedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	runner, err := NewRunner(config.CouncilConfig{
		Limits:         council.Limits{MaxFileChars: 50},
		MaxConcurrency: 2,
		MaxAnnotations: 20,
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	big := "@@ -0,0 +1,3 @@\n+const first = loadEverything();\n+const second = first.map(transform);\n+export default second;"
	files := []core.ChangedFile{
		{Path: "src/big.tsx", Patch: big},
		{Path: "src/a.ts", Patch: "@@ -1 +1 @@\n+x"},
	}
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	report, err := runner.Review(context.Background(), gen, files, nil)
	require.NoError(t, err)

	var oversize []core.Warning
	for _, w := range report.Warnings {
		if w.Kind == core.WarningSkippedOversizeFile {
			oversize = append(oversize, w)
		}
	}
	require.Len(t, oversize, 1)
	assert.Equal(t, "src/big.tsx", oversize[0].File)
}

func TestRunner_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	runner, err := NewRunner(config.CouncilConfig{MaxConcurrency: 1}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ core.WorkUnit) ([]core.CandidateAnnotation, error) {
			cancel()
			return nil, ctx.Err()
		}).MaxTimes(2)

	_, err = runner.Review(ctx, gen, []core.ChangedFile{{Path: "a.ts", Patch: tsPatch}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_NoReviewableFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	runner, err := NewRunner(config.CouncilConfig{MaxConcurrency: 1}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	report, err := runner.Review(context.Background(), gen, []core.ChangedFile{{Path: "README.md", Patch: "@@ -1 +1 @@\n+x"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Annotations)
	assert.Equal(t, "no issues found", report.SummaryText)
}

func TestNewRunner_BadLexicon(t *testing.T) {
	_, err := NewRunner(config.CouncilConfig{LexiconPath: "/does/not/exist.yml"}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestRunner_Consolidate(t *testing.T) {
	runner, err := NewRunner(config.CouncilConfig{MaxConcurrency: 1, MaxAnnotations: 20}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	unit := core.WorkUnit{Agent: "Amethyst", Index: 1, Files: []core.ChangedFile{{Path: "src/a.ts"}}}
	report := runner.Consolidate(council.Input{
		Results: []council.UnitResult{
			{Unit: unit, Candidates: []core.CandidateAnnotation{
				{File: "src/a.ts", LineStart: 4, LineEnd: 4, Severity: "error", Category: "security", Message: "Token is written to the console"},
			}},
			{Unit: core.WorkUnit{Agent: "Citrine", Index: 1, Files: unit.Files}, Err: errors.New("boom")},
		},
	})

	require.Len(t, report.Annotations, 1)
	assert.Equal(t, []core.Source{{Agent: "Amethyst", Unit: 1}}, report.Annotations[0].Sources)
	assert.Equal(t, core.RiskHigh, report.Summary.Risk)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, core.WarningGenerationFailed, report.Warnings[0].Kind)
}
