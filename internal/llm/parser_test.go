package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-council/internal/core"
)

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "plain object",
			input:     `{"comments":[{"file":"a.ts","line_start":3,"line_end":4,"severity":"error","category":"types","message":"Unsafe cast"}]}`,
			wantCount: 1,
		},
		{
			name:      "fenced with preamble",
			input:     "Here is my review:\n```json\n{\"comments\": [{\"file\": \"a.ts\", \"line_start\": 1, \"severity\": \"warning\", \"category\": \"perf\", \"message\": \"x\"}]}\n```\nThanks!",
			wantCount: 1,
		},
		{
			name:      "empty list",
			input:     `{"comments": []}`,
			wantCount: 0,
		},
		{
			name:      "bare array",
			input:     `[{"file":"a.ts","line_start":1,"line_end":1,"severity":"warning","category":"perf","message":"x"},{"file":"b.ts","line_start":2,"line_end":2,"severity":"warning","category":"perf","message":"y"}]`,
			wantCount: 2,
		},
		{
			name:    "no json",
			input:   "I found no issues.",
			wantErr: true,
		},
		{
			name:    "truncated json",
			input:   `{"comments": [{"file": "a.ts", "line_start": 1}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCandidates(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)
		})
	}
}

func TestParseCandidates_Fields(t *testing.T) {
	got, err := ParseCandidates(`{"comments":[{"file":"src/a.ts","line_start":7,"severity":"Error","category":"types","message":"m","suggestion":"s"}]}`)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, core.CandidateAnnotation{
		File:       "src/a.ts",
		LineStart:  7,
		LineEnd:    7,
		Severity:   "Error",
		Category:   "types",
		Message:    "m",
		Suggestion: "s",
	}, got[0])
}

func TestParseCandidates_SkipsUndecodableEntries(t *testing.T) {
	got, err := ParseCandidates(`{"comments":[
		{"file":"a.ts","line_start":3,"line_end":3,"severity":"error","category":"types","message":"Unsafe cast"},
		{"file":"b.ts","line_start":"12","severity":"warning","category":"perf","message":"String line"},
		"not a comment"
	]}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.ts", got[0].File)
	assert.Equal(t, 3, got[0].LineStart)
}
