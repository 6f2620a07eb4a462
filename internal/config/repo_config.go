package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/code-council/internal/core"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParsing  = errors.New("config parsing failed")
)

// RepoConfigPaths are the locations searched for the per-repository config, in order.
var RepoConfigPaths = []string{
	".code-council.yml",
	".github/.code-council.yml",
}

const (
	maxShortString = 50
	maxPolicyText  = 500
	maxPolicies    = 10
	maxComments    = 100
)

const blockedPolicyText = "[BLOCKED: suspicious content removed]"

// Patterns that are suspicious at the start of policy text embedded in a prompt.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ignore\s+(all\s+)?(previous\s+)?instructions?`),
	regexp.MustCompile(`^forget\s+(all\s+)?(previous\s+)?`),
	regexp.MustCompile(`^disregard\s+(all\s+)?(previous\s+)?`),
	regexp.MustCompile(`^override\s+`),
	regexp.MustCompile(`^system\s*:`),
	regexp.MustCompile(`^assistant\s*:`),
	regexp.MustCompile(`^user\s*:`),
	regexp.MustCompile(`^<\s*system\s*>`),
	regexp.MustCompile(`^###\s*(system|instruction)`),
}

var (
	manyNewlines   = regexp.MustCompile(`\n{3,}`)
	manySpaces     = regexp.MustCompile(` {3,}`)
	policyIDFilter = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// LoadRepoConfig loads the repository config from a checkout on disk. When no
// file exists it returns the defaults together with ErrConfigNotFound; an
// unreadable or invalid file also yields the defaults, with the error.
func LoadRepoConfig(repoPath string) (*core.RepoConfig, error) {
	for _, rel := range RepoConfigPaths {
		data, err := os.ReadFile(filepath.Join(repoPath, rel))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return core.DefaultRepoConfig(), fmt.Errorf("failed to read %s: %w", rel, err)
		}
		cfg, err := ParseRepoConfig(data)
		if err != nil {
			return core.DefaultRepoConfig(), fmt.Errorf("invalid %s: %w", rel, err)
		}
		return cfg, nil
	}
	return core.DefaultRepoConfig(), ErrConfigNotFound
}

// ParseRepoConfig decodes, validates and sanitises a repository config document.
func ParseRepoConfig(data []byte) (*core.RepoConfig, error) {
	cfg := core.DefaultRepoConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	if err := normalizeRepoConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	return cfg, nil
}

func normalizeRepoConfig(cfg *core.RepoConfig) error {
	if cfg.Version < 1 || cfg.Version > 10 {
		return fmt.Errorf("unsupported version %d", cfg.Version)
	}
	if cfg.Limits.MaxComments < 0 || cfg.Limits.MaxComments > maxComments {
		return fmt.Errorf("limits.max_comments must be between 0 and %d", maxComments)
	}
	sev, err := conventionSeverity(string(cfg.Limits.DefaultSeverity), core.SeverityWarning)
	if err != nil {
		return fmt.Errorf("limits.default_severity: %w", err)
	}
	cfg.Limits.DefaultSeverity = sev

	categories := make([]string, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if !core.IsKnownCategory(c) {
			return fmt.Errorf("unknown category %q", c)
		}
		categories = append(categories, c)
	}
	cfg.Categories = categories

	for name, rule := range cfg.Rules {
		sev, err := conventionSeverity(string(rule.Severity), cfg.Limits.DefaultSeverity)
		if err != nil {
			return fmt.Errorf("rules.%s.severity: %w", name, err)
		}
		rule.Severity = sev
		cfg.Rules[name] = rule
	}

	if len(cfg.Policy) > maxPolicies {
		cfg.Policy = cfg.Policy[:maxPolicies]
	}
	for i := range cfg.Policy {
		p := &cfg.Policy[i]
		sev, err := conventionSeverity(string(p.Severity), cfg.Limits.DefaultSeverity)
		if err != nil {
			return fmt.Errorf("policy %q: %w", p.ID, err)
		}
		p.Severity = sev
		p.ID = SanitizePolicyID(p.ID)
		if len([]rune(p.Text)) > maxPolicyText {
			return fmt.Errorf("policy %q text exceeds %d characters", p.ID, maxPolicyText)
		}
		p.Text = SanitizePolicyText(p.Text)
	}
	return nil
}

// Conventions are reported as warnings or errors only.
func conventionSeverity(raw string, fallback core.Severity) (core.Severity, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	sev, ok := core.ParseSeverity(raw)
	if !ok || sev == core.SeverityInfo {
		return "", fmt.Errorf("severity must be warning or error, got %q", raw)
	}
	return sev, nil
}

// SanitizePolicyText strips control characters, collapses runs of whitespace
// and blocks text that opens like a prompt injection.
func SanitizePolicyText(text string) string {
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, text)
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = manySpaces.ReplaceAllString(text, " ")

	probe := strings.ToLower(strings.TrimSpace(text))
	for _, p := range injectionPatterns {
		if p.MatchString(probe) {
			return blockedPolicyText
		}
	}
	return strings.TrimSpace(text)
}

// SanitizePolicyID keeps letters, digits, hyphens and underscores.
func SanitizePolicyID(id string) string {
	id = policyIDFilter.ReplaceAllString(id, "")
	if id == "" {
		return "unnamed"
	}
	if len(id) > maxShortString {
		id = id[:maxShortString]
	}
	return id
}
