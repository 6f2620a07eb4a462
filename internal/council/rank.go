package council

import (
	"fmt"
	"sort"

	"github.com/sevigo/code-council/internal/core"
)

// DefaultMaxAnnotations caps the number of annotations in a report.
const DefaultMaxAnnotations = 20

// rankLess orders candidates by severity (desc), file, start line. The remaining
// fields only break ties so that the order is total.
func rankLess(a, b *item) bool {
	if ra, rb := a.ann.Severity.Rank(), b.ann.Severity.Rank(); ra != rb {
		return ra > rb
	}
	if a.ann.File != b.ann.File {
		return a.ann.File < b.ann.File
	}
	if a.ann.LineStart != b.ann.LineStart {
		return a.ann.LineStart < b.ann.LineStart
	}
	if a.ann.LineEnd != b.ann.LineEnd {
		return a.ann.LineEnd < b.ann.LineEnd
	}
	if a.ann.Category != b.ann.Category {
		return a.ann.Category < b.ann.Category
	}
	if a.ann.Message != b.ann.Message {
		return a.ann.Message < b.ann.Message
	}
	if a.ann.Suggestion != b.ann.Suggestion {
		return a.ann.Suggestion < b.ann.Suggestion
	}
	return a.origin().Less(b.origin())
}

func rankItems(items []*item) {
	sort.SliceStable(items, func(i, j int) bool { return rankLess(items[i], items[j]) })
}

// capItems truncates to max and reports how many were dropped.
func capItems(items []*item, max int) ([]*item, *core.Warning) {
	if max <= 0 || len(items) <= max {
		return items, nil
	}
	dropped := len(items) - max
	return items[:max], &core.Warning{
		Kind:    core.WarningTruncatedOutput,
		Message: fmt.Sprintf("%d lower-ranked annotations were omitted to stay within the limit of %d", dropped, max),
		Count:   dropped,
	}
}
