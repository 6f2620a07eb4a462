package council

import (
	"fmt"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

type part struct {
	source  core.Source
	message string
}

// item is the working form of an annotation while it moves through the pipeline.
type item struct {
	ann     core.CandidateAnnotation
	sources []core.Source
	parts   []part
	merged  bool
}

func newItem(c core.CandidateAnnotation, src core.Source) *item {
	return &item{
		ann:     c,
		sources: []core.Source{src},
		parts:   []part{{source: src, message: c.Message}},
	}
}

// origin is the source that first produced the item.
func (it *item) origin() core.Source {
	return it.sources[0]
}

func (it *item) addSource(src core.Source) {
	for _, s := range it.sources {
		if s == src {
			return
		}
	}
	it.sources = append(it.sources, src)
}

// overlaps reports whether both items sit on the same file with line ranges
// that intersect or are directly adjacent.
func (it *item) overlaps(o *item) bool {
	return it.ann.File == o.ann.File &&
		it.ann.LineStart <= o.ann.LineEnd+1 &&
		o.ann.LineStart <= it.ann.LineEnd+1
}

// absorb folds o into it. When widen is set the line span becomes the union
// of both spans.
func (it *item) absorb(o *item, widen bool) {
	if widen {
		it.ann.LineStart = min(it.ann.LineStart, o.ann.LineStart)
		it.ann.LineEnd = max(it.ann.LineEnd, o.ann.LineEnd)
	}
	it.ann.Severity = core.MaxSeverity(it.ann.Severity, o.ann.Severity)
	it.ann.Suggestion = ""
	for _, p := range o.parts {
		if !it.hasPart(p) {
			it.parts = append(it.parts, p)
		}
	}
	for _, s := range o.sources {
		it.addSource(s)
	}
	it.merged = true
}

func (it *item) hasPart(p part) bool {
	for _, q := range it.parts {
		if q.source == p.source && q.message == p.message {
			return true
		}
	}
	return false
}

func (it *item) message() string {
	if len(it.parts) == 1 {
		return it.parts[0].message
	}
	lines := make([]string, len(it.parts))
	for i, p := range it.parts {
		lines[i] = fmt.Sprintf("- [%s] %s", p.source, p.message)
	}
	return strings.Join(lines, "\n")
}

func (it *item) final() core.FinalAnnotation {
	ann := it.ann
	ann.Message = it.message()
	sources := make([]core.Source, len(it.sources))
	copy(sources, it.sources)
	return core.FinalAnnotation{CandidateAnnotation: ann, Sources: sources, Merged: it.merged}
}

// dedupe drops items whose fingerprint collides with a higher-ranked item.
// Items must already be in rank order.
func dedupe(items []*item, fp *Fingerprinter) []*item {
	seen := make(map[string]*item, len(items))
	out := make([]*item, 0, len(items))
	for _, it := range items {
		key := fp.Fingerprint(it.ann)
		if survivor, ok := seen[key]; ok {
			for _, s := range it.sources {
				survivor.addSource(s)
			}
			continue
		}
		seen[key] = it
		out = append(out, it)
	}
	return out
}

// mergeOverlaps folds overlapping items into the earliest accepted item they
// touch. Items must already be in rank order; the accepted set stays
// non-overlapping and in rank order.
func mergeOverlaps(items []*item) []*item {
	accepted := make([]*item, 0, len(items))
	for _, it := range items {
		var hits []*item
		for _, a := range accepted {
			if a.overlaps(it) {
				hits = append(hits, a)
			}
		}
		switch len(hits) {
		case 0:
			accepted = append(accepted, it)
		case 1:
			hits[0].absorb(it, true)
		default:
			// Widening would make the target touch its neighbours.
			hits[0].absorb(it, false)
		}
	}
	return accepted
}
