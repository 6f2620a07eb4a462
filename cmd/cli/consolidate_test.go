package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-council/internal/core"
)

const recorded = `{
  "results": [
    {"unit": {"agent": "amethyst", "index": 1, "files": [{"path": "src/a.ts"}]},
     "candidates": [{"file": "src/a.ts", "line_start": 3, "line_end": 3, "severity": "error", "category": "types", "message": "Possible undefined access"}]},
    {"unit": {"agent": "citrine", "index": 1, "files": [{"path": "src/a.ts"}]},
     "error": "model timed out"}
  ],
  "warnings": [{"kind": "skipped_oversize_file", "message": "too large", "file": "big.ts"}]
}`

func TestReadRecordedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(recorded), 0o600))

	in, err := readRecordedInput(path)
	require.NoError(t, err)
	require.Len(t, in.Results, 2)

	converted := in.toInput(nil)
	require.Len(t, converted.Results, 2)
	assert.NoError(t, converted.Results[0].Err)
	assert.EqualError(t, converted.Results[1].Err, "model timed out")
	assert.Equal(t, "amethyst", converted.Results[0].Unit.Agent)
	assert.Len(t, converted.Warnings, 1)
	assert.Nil(t, converted.Policy)
}

func TestReadRecordedInput_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := readRecordedInput(path)
	assert.ErrorContains(t, err, "failed to decode input")
}

func TestWithPatches(t *testing.T) {
	files := withPatches([]core.ChangedFile{
		{Path: "a.ts", Patch: "@@ -1 +1 @@\n-a\n+b"},
		{Path: "logo.png"},
	})
	require.Len(t, files, 1)
	assert.Equal(t, "a.ts", files[0].Path)
}
