package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-council/internal/core"
)

func agentNames(agents []Agent) []string {
	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name
	}
	return names
}

func TestActiveAgents(t *testing.T) {
	cfg := core.DefaultRepoConfig()
	assert.Equal(t, []string{"Amethyst", "Citrine"}, agentNames(ActiveAgents(cfg)), "conventions agent needs rules")

	cfg.Policy = []core.PolicyRule{{ID: "hooks", Text: "Hooks start with use"}}
	assert.Equal(t, []string{"Amethyst", "Citrine", "Chalcedony"}, agentNames(ActiveAgents(cfg)))

	cfg.Agents.Citrine = false
	assert.Equal(t, []string{"Amethyst", "Chalcedony"}, agentNames(ActiveAgents(cfg)))

	assert.Equal(t, []string{"Amethyst", "Citrine"}, agentNames(ActiveAgents(nil)))
}

func TestAgentByName(t *testing.T) {
	a, ok := AgentByName("citrine")
	assert.True(t, ok)
	assert.Equal(t, "Citrine", a.Name)

	_, ok = AgentByName("quartz")
	assert.False(t, ok)
}

func TestRouteFiles(t *testing.T) {
	files := []core.ChangedFile{
		{Path: "src/App.tsx"},
		{Path: "src/util.mts"},
		{Path: "src/styles.scss"},
		{Path: "node_modules/x/index.js"},
		{Path: "generated/api.ts"},
		{Path: "src/data.json"},
		{Path: "README.md"},
	}
	cfg := core.DefaultRepoConfig()
	cfg.ExcludeDirs = []string{"generated/"}
	cfg.ExcludeExts = []string{"md"}

	var paths []string
	for _, f := range RouteFiles(Amethyst, files, cfg) {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"src/App.tsx", "src/util.mts"}, paths)

	paths = nil
	for _, f := range RouteFiles(Chalcedony, files, cfg) {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"src/App.tsx", "src/util.mts", "src/styles.scss", "src/data.json"}, paths)
}

func TestRulesContext(t *testing.T) {
	cfg := core.DefaultRepoConfig()
	cfg.Rules = map[string]core.RuleToggle{
		"scss_nesting": {Enabled: true, Options: map[string]any{"require_ampersand": true}},
		"bem_naming":   {Enabled: true, Severity: core.SeverityError, Options: map[string]any{"prefix": "c-"}},
		"disabled":     {Enabled: false},
	}
	cfg.Policy = []core.PolicyRule{{ID: "hooks", Severity: core.SeverityWarning, Text: "Custom hooks are named useX"}}

	want := "- bem_naming: enabled, prefix=c-, severity=error\n" +
		"- scss_nesting: enabled, require_ampersand=true, severity=warning\n" +
		"- POLICY hooks (warning): Custom hooks are named useX"
	assert.Equal(t, want, RulesContext(cfg))
}
