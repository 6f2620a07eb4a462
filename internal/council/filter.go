package council

import (
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

// QualityFilter drops low-signal candidates: hedged wording, known
// false-positive shapes and info-level findings.
type QualityFilter struct {
	hedging        []string
	falsePositives []FalsePositiveRule
}

// NewQualityFilter builds a filter from the lexicon tables.
func NewQualityFilter(lex *Lexicon) *QualityFilter {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &QualityFilter{
		hedging:        lex.HedgingPhrases,
		falsePositives: lex.FalsePositives,
	}
}

// Keep reports whether a candidate survives the filter.
func (f *QualityFilter) Keep(c core.CandidateAnnotation) bool {
	if c.Severity == core.SeverityInfo {
		return false
	}

	message := lower(c.Message)
	text := message + " " + lower(c.Suggestion)
	for _, phrase := range f.hedging {
		if strings.Contains(text, phrase) {
			return false
		}
	}

	for _, rule := range f.falsePositives {
		if c.Severity != rule.Severity || !strings.Contains(message, rule.Term) {
			continue
		}
		if rule.CoTerm == "" || strings.Contains(message, rule.CoTerm) {
			return false
		}
	}
	return true
}

// Filter returns the kept candidates in their original order.
func (f *QualityFilter) Filter(candidates []core.CandidateAnnotation) []core.CandidateAnnotation {
	kept := make([]core.CandidateAnnotation, 0, len(candidates))
	for _, c := range candidates {
		if f.Keep(c) {
			kept = append(kept, c)
		}
	}
	return kept
}
