package core

import "strings"

// Categories an annotation may carry. Anything else is treated as malformed.
var KnownCategories = []string{"types", "perf", "arch", "consistency", "ui", "a11y", "security", "ux"}

// IsKnownCategory reports whether c is one of KnownCategories.
func IsKnownCategory(c string) bool {
	for _, k := range KnownCategories {
		if k == c {
			return true
		}
	}
	return false
}

// RepoConfig represents the structure of the .code-council.yml file.
type RepoConfig struct {
	Version int          `yaml:"version"`
	Agents  AgentToggles `yaml:"agents"`
	Limits  RepoLimits   `yaml:"limits"`

	// Categories restricts which annotation categories may be published.
	// Empty means every known category applies.
	Categories []string `yaml:"categories"`

	Rules  map[string]RuleToggle `yaml:"rules"`
	Policy []PolicyRule          `yaml:"policy"`

	// Exclusion of entire directories by name. Example: ["dist", "build"]
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Exclusion of files based on their extension.
	// The leading dot is optional. Example: [".md", "lock"]
	ExcludeExts []string `yaml:"exclude_exts"`
}

// AgentToggles enables or disables individual review agents.
type AgentToggles struct {
	Amethyst   bool `yaml:"amethyst"`
	Citrine    bool `yaml:"citrine"`
	Chalcedony bool `yaml:"chalcedony"`
}

// Enabled reports whether the named agent is switched on.
func (a AgentToggles) Enabled(agent string) bool {
	switch strings.ToLower(agent) {
	case "amethyst":
		return a.Amethyst
	case "citrine":
		return a.Citrine
	case "chalcedony":
		return a.Chalcedony
	default:
		return false
	}
}

// RepoLimits holds per-repository output limits.
type RepoLimits struct {
	// MaxComments overrides the maximum number of final annotations. 0 keeps the default.
	MaxComments     int      `yaml:"max_comments"`
	DefaultSeverity Severity `yaml:"default_severity"`
}

// RuleToggle is a structured convention rule enforced by the conventions agent.
// Rule specific settings such as a naming prefix are collected in Options.
type RuleToggle struct {
	Enabled  bool           `yaml:"enabled"`
	Severity Severity       `yaml:"severity"`
	Options  map[string]any `yaml:",inline"`
}

// PolicyRule is a freeform convention described in text.
type PolicyRule struct {
	ID       string   `yaml:"id"`
	Severity Severity `yaml:"severity"`
	Text     string   `yaml:"text"`
}

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		Version: 1,
		Agents: AgentToggles{
			Amethyst:   true,
			Citrine:    true,
			Chalcedony: true,
		},
		Limits: RepoLimits{
			DefaultSeverity: SeverityWarning,
		},
		Categories:  []string{},
		Rules:       map[string]RuleToggle{},
		Policy:      []PolicyRule{},
		ExcludeDirs: []string{},
		ExcludeExts: []string{},
	}
}

// HasAnyRules reports whether any structured rule is enabled or any policy exists.
func (c *RepoConfig) HasAnyRules() bool {
	if c == nil {
		return false
	}
	for _, r := range c.Rules {
		if r.Enabled {
			return true
		}
	}
	return len(c.Policy) > 0
}

// CategoryAllowed reports whether the repository policy lets category c through.
func (c *RepoConfig) CategoryAllowed(category string) bool {
	if c == nil || len(c.Categories) == 0 {
		return true
	}
	for _, allowed := range c.Categories {
		if strings.EqualFold(allowed, category) {
			return true
		}
	}
	return false
}
