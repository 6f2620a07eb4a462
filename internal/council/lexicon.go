package council

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/code-council/internal/core"
)

// Tier orders files for batching. Lower tiers are processed first.
type Tier int

const (
	TierUI Tier = iota
	TierShared
	TierRoute
	TierUtility
	TierTest
	TierGenerated
)

// DefaultTier applies to paths no priority rule matches.
const DefaultTier = TierUtility

// FalsePositiveRule drops candidates of Severity whose message mentions Term,
// and, when CoTerm is set, also mentions CoTerm.
type FalsePositiveRule struct {
	Term     string        `yaml:"term"`
	CoTerm   string        `yaml:"co_term,omitempty"`
	Severity core.Severity `yaml:"severity"`
}

// PriorityRule assigns Tier to a path. A rule matches when the lower-cased path
// contains one of Patterns or ends with one of Suffixes; with neither set, every
// path matches. FilenamePrefixes, when set, additionally require the base name
// to start with one of them.
type PriorityRule struct {
	Tier             Tier     `yaml:"tier"`
	Patterns         []string `yaml:"patterns,omitempty"`
	Suffixes         []string `yaml:"suffixes,omitempty"`
	FilenamePrefixes []string `yaml:"filename_prefixes,omitempty"`
}

func (r PriorityRule) matches(lowerPath, lowerName string) bool {
	hit := len(r.Patterns) == 0 && len(r.Suffixes) == 0
	for _, p := range r.Patterns {
		if strings.Contains(lowerPath, p) {
			hit = true
			break
		}
	}
	if !hit {
		for _, s := range r.Suffixes {
			if strings.HasSuffix(lowerPath, s) {
				hit = true
				break
			}
		}
	}
	if !hit || len(r.FilenamePrefixes) == 0 {
		return hit
	}
	for _, p := range r.FilenamePrefixes {
		if strings.HasPrefix(lowerName, p) {
			return true
		}
	}
	return false
}

// Lexicon is the policy data behind the heuristics of the pipeline. Every table
// can be replaced from YAML without touching the pipeline code.
type Lexicon struct {
	HedgingPhrases []string            `yaml:"hedging_phrases"`
	FalsePositives []FalsePositiveRule `yaml:"false_positives"`
	StopWords      []string            `yaml:"stop_words"`
	// PriorityRules are evaluated in order; the first match wins.
	PriorityRules []PriorityRule `yaml:"priority_rules"`
}

// DefaultLexicon returns the built-in tables.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		HedgingPhrases: []string{
			"consider ",
			"might want to",
			"could potentially",
			"may cause",
			"may lead to",
			"can lead to",
			"might lead to",
			"could lead to",
			"it would be better",
			"i suggest",
			"you should consider",
			"for better safety",
			"to be safe",
			"just in case",
			"potentially",
			"possibly",
			"arguably",
			"you might",
			"it might be",
			"could be improved",
			"would recommend",
			"best practice",
			"generally speaking",
		},
		FalsePositives: []FalsePositiveRule{
			{Term: "context", CoTerm: "null", Severity: core.SeverityError},
			{Term: "infinite loop", Severity: core.SeverityError},
			{Term: "infinite re-render", Severity: core.SeverityError},
			{Term: "memory leak", Severity: core.SeverityError},
			{Term: "setstate", CoTerm: "useeffect", Severity: core.SeverityError},
			{Term: "set state", CoTerm: "useeffect", Severity: core.SeverityError},
			{Term: "without checking", Severity: core.SeverityError},
			{Term: "can throw", Severity: core.SeverityError},
			{Term: "can cause", Severity: core.SeverityError},
		},
		StopWords: []string{
			// articles and determiners
			"a", "an", "the", "this", "that", "these", "those", "some", "any",
			"each", "every", "all", "both", "either", "neither", "such",
			// pronouns
			"i", "me", "my", "we", "us", "our", "you", "your", "he", "him", "his",
			"she", "her", "it", "its", "they", "them", "their", "there", "here",
			// auxiliary verbs
			"is", "are", "was", "were", "be", "been", "being", "am",
			"do", "does", "did", "has", "have", "had",
			"will", "would", "shall", "should", "can", "could", "may", "might", "must",
		},
		PriorityRules: []PriorityRule{
			{
				Tier: TierGenerated,
				Patterns: []string{
					"config", ".config.", "generated", ".gen.", "mock", "__mock__",
					"package.json", "tsconfig", "eslint", "prettier", ".d.ts",
				},
			},
			{
				Tier:     TierTest,
				Patterns: []string{".test.", ".spec.", "__tests__", "/tests/", "/test/", "_test."},
			},
			{
				Tier: TierUtility,
				Patterns: []string{
					"/utils/", "/util/", "/helpers/", "/helper/", "/lib/", "/services/",
					"utils.", "helper.", "service.",
				},
			},
			{
				Tier:     TierRoute,
				Patterns: []string{"/pages/", "/app/", "/routes/", "page.", "route.", "layout."},
			},
			{
				Tier:             TierShared,
				Patterns:         []string{"/hooks/", "/hook/", "use"},
				FilenamePrefixes: []string{"use"},
			},
			{
				Tier:     TierUI,
				Patterns: []string{"/components/", "/component/", "component."},
				Suffixes: []string{".tsx"},
			},
		},
	}
}

// LoadLexicon parses a YAML document on top of the default tables. A table
// present in the document replaces the corresponding default table.
func LoadLexicon(data []byte) (*Lexicon, error) {
	lex := DefaultLexicon()
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	lex.normalize()
	return lex, nil
}

// LoadLexiconFile reads a lexicon YAML file from disk.
func LoadLexiconFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}
	return LoadLexicon(data)
}

// Validate checks that every rule in the lexicon is usable.
func (l *Lexicon) Validate() error {
	for i, fp := range l.FalsePositives {
		if strings.TrimSpace(fp.Term) == "" {
			return fmt.Errorf("false positive rule %d has an empty term", i)
		}
		if !fp.Severity.Valid() {
			return fmt.Errorf("false positive rule %q has unknown severity %q", fp.Term, fp.Severity)
		}
	}
	for i, pr := range l.PriorityRules {
		if pr.Tier < TierUI || pr.Tier > TierGenerated {
			return fmt.Errorf("priority rule %d has out-of-range tier %d", i, pr.Tier)
		}
	}
	return nil
}

// normalize lower-cases every matching term so lookups can compare against
// lower-cased input directly.
func (l *Lexicon) normalize() {
	for i, p := range l.HedgingPhrases {
		l.HedgingPhrases[i] = lower(p)
	}
	for i := range l.FalsePositives {
		l.FalsePositives[i].Term = lower(l.FalsePositives[i].Term)
		l.FalsePositives[i].CoTerm = lower(l.FalsePositives[i].CoTerm)
	}
	for i, w := range l.StopWords {
		l.StopWords[i] = lower(strings.TrimSpace(w))
	}
	for i := range l.PriorityRules {
		r := &l.PriorityRules[i]
		for j, p := range r.Patterns {
			r.Patterns[j] = lower(p)
		}
		for j, s := range r.Suffixes {
			r.Suffixes[j] = lower(s)
		}
		for j, p := range r.FilenamePrefixes {
			r.FilenamePrefixes[j] = lower(p)
		}
	}
}

// TierFor returns the priority tier of a file path.
func (l *Lexicon) TierFor(path string) Tier {
	lowerPath := lower(path)
	lowerName := lowerPath
	if idx := strings.LastIndex(lowerPath, "/"); idx >= 0 {
		lowerName = lowerPath[idx+1:]
	}
	for _, r := range l.PriorityRules {
		if r.matches(lowerPath, lowerName) {
			return r.Tier
		}
	}
	return DefaultTier
}

func (l *Lexicon) stopWordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(l.StopWords))
	for _, w := range l.StopWords {
		set[w] = struct{}{}
	}
	return set
}

// lower applies Unicode lower-casing. A Caser is stateful, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
