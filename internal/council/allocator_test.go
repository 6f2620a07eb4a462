package council

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-council/internal/core"
)

func patchOf(n int) string {
	return strings.Repeat("x", n)
}

func TestAllocator_PacksGreedily(t *testing.T) {
	a := NewAllocator(DefaultLimits(), nil)

	alloc := a.Allocate("Amethyst", []core.ChangedFile{
		{Path: "src/c.ts", Patch: patchOf(2000)},
		{Path: "src/a.ts", Patch: patchOf(45000)},
		{Path: "src/b.ts", Patch: patchOf(2000)},
	})

	require.Len(t, alloc.Units, 2)
	assert.Equal(t, []string{"src/a.ts"}, alloc.Units[0].Paths())
	assert.Equal(t, []string{"src/b.ts", "src/c.ts"}, alloc.Units[1].Paths())
	assert.Equal(t, 45000, alloc.Units[0].Chars)
	assert.Equal(t, 4000, alloc.Units[1].Chars)
	assert.Empty(t, alloc.Skipped)
	assert.Empty(t, alloc.Discarded)
	assert.Empty(t, alloc.Warnings)

	for i, u := range alloc.Units {
		assert.Equal(t, "Amethyst", u.Agent)
		assert.Equal(t, i+1, u.Index)
	}
}

func TestAllocator_SkipsOversizeFiles(t *testing.T) {
	a := NewAllocator(DefaultLimits(), nil)

	alloc := a.Allocate("Citrine", []core.ChangedFile{
		{Path: "src/huge.ts", Patch: patchOf(DefaultMaxFileChars + 1)},
		{Path: "src/small.ts", Patch: patchOf(10)},
	})

	require.Len(t, alloc.Units, 1)
	assert.Equal(t, []string{"src/small.ts"}, alloc.Units[0].Paths())
	assert.Equal(t, []string{"src/huge.ts"}, alloc.Skipped)
	require.Len(t, alloc.Warnings, 1)
	assert.Equal(t, core.WarningSkippedOversizeFile, alloc.Warnings[0].Kind)
	assert.Equal(t, "src/huge.ts", alloc.Warnings[0].File)
}

func TestAllocator_FileCountBudget(t *testing.T) {
	a := NewAllocator(DefaultLimits(), nil)

	var files []core.ChangedFile
	for i := 0; i < 13; i++ {
		files = append(files, core.ChangedFile{Path: fmt.Sprintf("src/f%02d.ts", i), Patch: patchOf(100)})
	}

	alloc := a.Allocate("Amethyst", files)

	require.Len(t, alloc.Units, 2)
	assert.Len(t, alloc.Units[0].Files, DefaultMaxUnitFiles)
	assert.Len(t, alloc.Units[1].Files, 1)
}

func TestAllocator_UnitCap(t *testing.T) {
	a := NewAllocator(Limits{MaxUnitChars: 40000, MaxUnitFiles: 12, MaxFileChars: 60000, MaxUnits: 2}, nil)

	var files []core.ChangedFile
	for i := 0; i < 4; i++ {
		files = append(files, core.ChangedFile{Path: fmt.Sprintf("src/f%d.ts", i), Patch: patchOf(30000)})
	}

	alloc := a.Allocate("Amethyst", files)

	require.Len(t, alloc.Units, 2)
	assert.Equal(t, []string{"src/f2.ts", "src/f3.ts"}, alloc.Discarded)
	require.Len(t, alloc.Warnings, 1)
	assert.Equal(t, core.WarningBatchCapExceeded, alloc.Warnings[0].Kind)
	assert.Equal(t, 2, alloc.Warnings[0].Count)
}

func TestAllocator_PriorityOrder(t *testing.T) {
	a := NewAllocator(DefaultLimits(), nil)

	alloc := a.Allocate("Amethyst", []core.ChangedFile{
		{Path: "tsconfig.json", Patch: "x"},
		{Path: "src/utils/format.test.ts", Patch: "x"},
		{Path: "src/utils/format.ts", Patch: "x"},
		{Path: "src/pages/index.ts", Patch: "x"},
		{Path: "src/hooks/useAuth.ts", Patch: "x"},
		{Path: "src/components/Button.tsx", Patch: "x"},
	})

	require.Len(t, alloc.Units, 1)
	assert.Equal(t, []string{
		"src/components/Button.tsx",
		"src/hooks/useAuth.ts",
		"src/pages/index.ts",
		"src/utils/format.ts",
		"src/utils/format.test.ts",
		"tsconfig.json",
	}, alloc.Units[0].Paths())
}

func TestAllocator_Completeness(t *testing.T) {
	limits := Limits{MaxUnitChars: 5000, MaxUnitFiles: 3, MaxFileChars: 4000, MaxUnits: 3}
	a := NewAllocator(limits, nil)

	var files []core.ChangedFile
	for i := 0; i < 25; i++ {
		size := (i*1777)%6000 + 1
		files = append(files, core.ChangedFile{Path: fmt.Sprintf("pkg%d/file%d.ts", i%4, i), Patch: patchOf(size)})
	}

	alloc := a.Allocate("Amethyst", files)

	assert.Equal(t, len(files), alloc.FileCount()+len(alloc.Skipped)+len(alloc.Discarded))
	assert.LessOrEqual(t, len(alloc.Units), limits.MaxUnits)

	seen := map[string]int{}
	for _, u := range alloc.Units {
		assert.LessOrEqual(t, len(u.Files), limits.MaxUnitFiles)
		if len(u.Files) > 1 {
			assert.LessOrEqual(t, u.Chars, limits.MaxUnitChars)
		}
		for _, f := range u.Files {
			seen[f.Path]++
		}
	}
	for _, p := range alloc.Skipped {
		seen[p]++
	}
	for _, p := range alloc.Discarded {
		seen[p]++
	}
	for _, f := range files {
		assert.Equal(t, 1, seen[f.Path], f.Path)
	}
}

func TestAllocator_Deterministic(t *testing.T) {
	a := NewAllocator(Limits{MaxUnitChars: 300, MaxUnitFiles: 2}, nil)
	files := []core.ChangedFile{
		{Path: "b/x.ts", Patch: patchOf(100)},
		{Path: "a/y.tsx", Patch: patchOf(200)},
		{Path: "a/z.ts", Patch: patchOf(150)},
		{Path: "c/useThing.ts", Patch: patchOf(50)},
	}
	reversed := make([]core.ChangedFile, len(files))
	for i, f := range files {
		reversed[len(files)-1-i] = f
	}

	assert.Equal(t, a.Allocate("Citrine", files), a.Allocate("Citrine", reversed))
}

func TestLimits_WithDefaults(t *testing.T) {
	a := NewAllocator(Limits{MaxUnits: 2}, nil)
	got := a.Limits()
	assert.Equal(t, DefaultMaxUnitChars, got.MaxUnitChars)
	assert.Equal(t, DefaultMaxUnitFiles, got.MaxUnitFiles)
	assert.Equal(t, DefaultMaxFileChars, got.MaxFileChars)
	assert.Equal(t, 2, got.MaxUnits)
}
