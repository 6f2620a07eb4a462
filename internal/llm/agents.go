package llm

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

// Agent is a specialised reviewer. Agents only differ in the files they read
// and the prompt they are given.
type Agent struct {
	Name   string
	Prompt PromptKey
	// Extensions limits the agent to these file types. Empty means every file.
	Extensions []string
	// RequiresRules skips the agent unless the repository defines conventions.
	RequiresRules bool
}

var (
	Amethyst = Agent{Name: "Amethyst", Prompt: AmethystPrompt, Extensions: scriptExtensions}
	Citrine  = Agent{Name: "Citrine", Prompt: CitrinePrompt, Extensions: scriptExtensions}
	// Chalcedony enforces repository conventions from .code-council.yml.
	Chalcedony = Agent{Name: "Chalcedony", Prompt: ChalcedonyPrompt, RequiresRules: true}
)

// Agents returns the full council in a fixed order.
func Agents() []Agent {
	return []Agent{Amethyst, Citrine, Chalcedony}
}

// AgentByName looks an agent up case-insensitively.
func AgentByName(name string) (Agent, bool) {
	for _, a := range Agents() {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Agent{}, false
}

// ActiveAgents returns the agents enabled for a repository.
func ActiveAgents(cfg *core.RepoConfig) []Agent {
	if cfg == nil {
		cfg = core.DefaultRepoConfig()
	}
	var active []Agent
	for _, a := range Agents() {
		if !cfg.Agents.Enabled(a.Name) {
			continue
		}
		if a.RequiresRules && !cfg.HasAnyRules() {
			continue
		}
		active = append(active, a)
	}
	return active
}

// Accepts reports whether the agent reads files with this path.
func (a Agent) Accepts(path string) bool {
	if len(a.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range a.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// RouteFiles selects the changed files an agent should review, dropping
// excluded directories and extensions.
func RouteFiles(a Agent, files []core.ChangedFile, cfg *core.RepoConfig) []core.ChangedFile {
	var excludeDirs, excludeExts []string
	excludeDirs = append(excludeDirs, defaultExcludeDirs...)
	if cfg != nil {
		excludeDirs = append(excludeDirs, cfg.ExcludeDirs...)
		excludeExts = cfg.ExcludeExts
	}

	routed := make([]core.ChangedFile, 0, len(files))
	for _, f := range files {
		if !a.Accepts(f.Path) || inExcludedDir(f.Path, excludeDirs) || hasExcludedExt(f.Path, excludeExts) {
			continue
		}
		routed = append(routed, f)
	}
	return routed
}

func inExcludedDir(path string, dirs []string) bool {
	clean := filepath.ToSlash(filepath.Clean(strings.TrimPrefix(path, "/")))
	for _, dir := range dirs {
		d := strings.Trim(filepath.ToSlash(filepath.Clean(dir)), "/")
		if d == "" || d == "." {
			continue
		}
		if clean == d || strings.HasPrefix(clean, d+"/") {
			return true
		}
	}
	return false
}

func hasExcludedExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, e := range exts {
		if strings.ToLower(strings.TrimPrefix(e, ".")) == ext {
			return true
		}
	}
	return false
}

// RulesContext renders the repository conventions as the block embedded in
// the conventions prompt. Rules are listed by name, then policies in order.
func RulesContext(cfg *core.RepoConfig) string {
	if cfg == nil {
		return ""
	}
	var sb strings.Builder

	names := make([]string, 0, len(cfg.Rules))
	for name, r := range cfg.Rules {
		if r.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		r := cfg.Rules[name]
		fmt.Fprintf(&sb, "- %s: enabled", name)
		keys := make([]string, 0, len(r.Options))
		for k := range r.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, ", %s=%v", k, r.Options[k])
		}
		fmt.Fprintf(&sb, ", severity=%s\n", ruleSeverity(r.Severity, cfg))
	}

	for _, p := range cfg.Policy {
		fmt.Fprintf(&sb, "- POLICY %s (%s): %s\n", p.ID, ruleSeverity(p.Severity, cfg), p.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func ruleSeverity(s core.Severity, cfg *core.RepoConfig) core.Severity {
	if s.Valid() {
		return s
	}
	if cfg.Limits.DefaultSeverity.Valid() {
		return cfg.Limits.DefaultSeverity
	}
	return core.SeverityWarning
}
