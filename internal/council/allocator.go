package council

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

const (
	DefaultMaxUnitChars = 40000
	DefaultMaxUnitFiles = 12
	DefaultMaxFileChars = 60000
	DefaultMaxUnits     = 5
)

// Limits bound the size of work units produced for one agent.
type Limits struct {
	MaxUnitChars int `mapstructure:"max_unit_chars"`
	MaxUnitFiles int `mapstructure:"max_unit_files"`
	MaxFileChars int `mapstructure:"max_file_chars"`
	MaxUnits     int `mapstructure:"max_units"`
}

// DefaultLimits returns the standard allocation limits.
func DefaultLimits() Limits {
	return Limits{
		MaxUnitChars: DefaultMaxUnitChars,
		MaxUnitFiles: DefaultMaxUnitFiles,
		MaxFileChars: DefaultMaxFileChars,
		MaxUnits:     DefaultMaxUnits,
	}
}

// withDefaults replaces non-positive limits with their defaults.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxUnitChars <= 0 {
		l.MaxUnitChars = d.MaxUnitChars
	}
	if l.MaxUnitFiles <= 0 {
		l.MaxUnitFiles = d.MaxUnitFiles
	}
	if l.MaxFileChars <= 0 {
		l.MaxFileChars = d.MaxFileChars
	}
	if l.MaxUnits <= 0 {
		l.MaxUnits = d.MaxUnits
	}
	return l
}

// Allocation is the result of packing a change set into work units.
// Every input file appears exactly once in Units, Skipped or Discarded.
type Allocation struct {
	Units     []core.WorkUnit
	Skipped   []string
	Discarded []string
	Warnings  []core.Warning
}

// FileCount returns the number of files placed in units.
func (a Allocation) FileCount() int {
	n := 0
	for _, u := range a.Units {
		n += len(u.Files)
	}
	return n
}

// Allocator packs changed files into bounded work units in priority order.
type Allocator struct {
	limits  Limits
	lexicon *Lexicon
}

func NewAllocator(limits Limits, lex *Lexicon) *Allocator {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Allocator{limits: limits.withDefaults(), lexicon: lex}
}

// Limits returns the effective limits.
func (a *Allocator) Limits() Limits {
	return a.limits
}

type rankedFile struct {
	file core.ChangedFile
	tier Tier
	dir  string
}

func dirOf(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return ""
}

// Allocate packs files for agent. Files are ordered by (tier, directory, path)
// and packed greedily; a file is never split across units.
func (a *Allocator) Allocate(agent string, files []core.ChangedFile) Allocation {
	var out Allocation

	ranked := make([]rankedFile, 0, len(files))
	for _, f := range files {
		if len(f.Patch) > a.limits.MaxFileChars {
			out.Skipped = append(out.Skipped, f.Path)
			out.Warnings = append(out.Warnings, core.Warning{
				Kind:    core.WarningSkippedOversizeFile,
				Message: fmt.Sprintf("%s: patch of %d chars exceeds the %d char limit", f.Path, len(f.Patch), a.limits.MaxFileChars),
				File:    f.Path,
			})
			continue
		}
		ranked = append(ranked, rankedFile{file: f, tier: a.lexicon.TierFor(f.Path), dir: dirOf(f.Path)})
	}
	sort.Strings(out.Skipped)
	sortWarningsByFile(out.Warnings)

	sort.SliceStable(ranked, func(i, j int) bool {
		x, y := ranked[i], ranked[j]
		if x.tier != y.tier {
			return x.tier < y.tier
		}
		if x.dir != y.dir {
			return x.dir < y.dir
		}
		if x.file.Path != y.file.Path {
			return x.file.Path < y.file.Path
		}
		return x.file.Patch < y.file.Patch
	})

	var units [][]core.ChangedFile
	var current []core.ChangedFile
	chars := 0
	for _, rf := range ranked {
		size := len(rf.file.Patch)
		if len(current) > 0 && (chars+size > a.limits.MaxUnitChars || len(current) >= a.limits.MaxUnitFiles) {
			units = append(units, current)
			current, chars = nil, 0
		}
		current = append(current, rf.file)
		chars += size
	}
	if len(current) > 0 {
		units = append(units, current)
	}

	if len(units) > a.limits.MaxUnits {
		for _, dropped := range units[a.limits.MaxUnits:] {
			for _, f := range dropped {
				out.Discarded = append(out.Discarded, f.Path)
			}
		}
		units = units[:a.limits.MaxUnits]
		out.Warnings = append(out.Warnings, core.Warning{
			Kind:    core.WarningBatchCapExceeded,
			Message: fmt.Sprintf("%s: reviewed the first %d units; %d files were not reviewed", agent, a.limits.MaxUnits, len(out.Discarded)),
			Count:   len(out.Discarded),
		})
	}

	for i, files := range units {
		unit := core.WorkUnit{Agent: agent, Index: i + 1, Files: files}
		for _, f := range files {
			unit.Chars += len(f.Patch)
		}
		out.Units = append(out.Units, unit)
	}
	return out
}

func sortWarningsByFile(ws []core.Warning) {
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].File < ws[j].File })
}
