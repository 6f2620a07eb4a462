package core

import (
	"fmt"
	"strings"
)

// Severity classifies how serious a finding is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank returns a numeric rank for ordering (higher = more severe).
// Unknown severities rank below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// ParseSeverity normalizes free-form severity text.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	return sev, sev.Valid()
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ChangedFile holds the path and unified-diff patch of a single file in a change set.
// Patch may be empty for binary or very large files.
type ChangedFile struct {
	Path  string `json:"path"`
	Patch string `json:"patch"`
}

// WorkUnit is a size-bounded group of changed files dispatched together for
// candidate generation. Agent and Index form the source tag that is later
// injected into every candidate the unit produces.
type WorkUnit struct {
	Agent string        `json:"agent"`
	Index int           `json:"index"`
	Files []ChangedFile `json:"files"`
	Chars int           `json:"chars"`
}

// Source returns the tag identifying this unit as the producer of its candidates.
func (u WorkUnit) Source() Source {
	return Source{Agent: u.Agent, Unit: u.Index}
}

// Paths lists the file paths of the unit in order.
func (u WorkUnit) Paths() []string {
	paths := make([]string, len(u.Files))
	for i, f := range u.Files {
		paths[i] = f.Path
	}
	return paths
}

// Source identifies which agent and work unit produced a candidate.
type Source struct {
	Agent string `json:"agent"`
	Unit  int    `json:"unit"`
}

func (s Source) String() string {
	return fmt.Sprintf("%s#%d", s.Agent, s.Unit)
}

// Less orders sources by agent name then unit index.
func (s Source) Less(o Source) bool {
	if s.Agent != o.Agent {
		return s.Agent < o.Agent
	}
	return s.Unit < o.Unit
}

// CandidateAnnotation is an unvetted finding about a file and line range as
// returned by a generator. Generators never set the source; it is attached by
// the consolidation pipeline from the work unit tag.
type CandidateAnnotation struct {
	File       string   `json:"file"`
	LineStart  int      `json:"line_start"`
	LineEnd    int      `json:"line_end"`
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// FinalAnnotation is a candidate that survived consolidation, possibly the
// result of merging several overlapping candidates.
type FinalAnnotation struct {
	CandidateAnnotation
	Sources []Source `json:"sources"`
	Merged  bool     `json:"merged,omitempty"`
}

// Agents returns the distinct agent names among the sources, in source order.
func (a FinalAnnotation) Agents() []string {
	seen := make(map[string]struct{}, len(a.Sources))
	var agents []string
	for _, s := range a.Sources {
		if _, ok := seen[s.Agent]; ok {
			continue
		}
		seen[s.Agent] = struct{}{}
		agents = append(agents, s.Agent)
	}
	return agents
}

// WarningKind enumerates the non-fatal anomalies reported by the pipeline.
type WarningKind string

const (
	WarningSkippedOversizeFile WarningKind = "skipped_oversize_file"
	WarningBatchCapExceeded    WarningKind = "batch_cap_exceeded"
	WarningTruncatedOutput     WarningKind = "truncated_output"
	WarningGenerationFailed    WarningKind = "generation_failed"
)

// Warning is informational and never blocks output.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
	File    string      `json:"file,omitempty"`
	Count   int         `json:"count,omitempty"`
}

// RiskLevel is the coarse classification derived from final annotations.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Concern is a short preview of a high-severity annotation.
type Concern struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Preview string `json:"preview"`
}

// Summary aggregates statistics over the final annotations.
type Summary struct {
	Total       int              `json:"total"`
	BySeverity  map[Severity]int `json:"by_severity"`
	ByCategory  map[string]int   `json:"by_category"`
	Risk        RiskLevel        `json:"risk"`
	TopConcerns []Concern        `json:"top_concerns,omitempty"`
}

// Report is the consolidated output handed to a publisher.
type Report struct {
	Annotations []FinalAnnotation `json:"annotations"`
	Warnings    []Warning         `json:"warnings"`
	Summary     Summary           `json:"summary"`
	SummaryText string            `json:"summary_text"`
}
