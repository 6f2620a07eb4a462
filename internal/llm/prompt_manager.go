package llm

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// ModelProvider selects a provider-specific prompt variant.
type ModelProvider string

// PromptKey names a prompt family.
type PromptKey string

const (
	DefaultProvider  ModelProvider = "default"
	AmethystPrompt   PromptKey     = "amethyst"
	CitrinePrompt    PromptKey     = "citrine"
	ChalcedonyPrompt PromptKey     = "chalcedony"
)

// PromptData is what every agent prompt is rendered with.
type PromptData struct {
	Agent           string
	Diff            string
	MaxComments     int
	Rules           string
	DefaultSeverity string
	Categories      string
}

// PromptManager holds the embedded prompt templates, keyed by prompt and
// provider. Files are named "<key>_<provider>.prompt".
type PromptManager struct {
	prompts map[PromptKey]map[ModelProvider]*template.Template
}

func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[PromptKey]map[ModelProvider]*template.Template),
	}

	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, provider, err := splitPromptName(entry.Name())
		if err != nil {
			return nil, err
		}
		content, err := promptFiles.ReadFile("prompts/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt %s: %w", entry.Name(), err)
		}
		if err := pm.register(key, provider, string(content)); err != nil {
			return nil, fmt.Errorf("failed to register prompt %s: %w", entry.Name(), err)
		}
	}
	return pm, nil
}

func splitPromptName(fileName string) (PromptKey, ModelProvider, error) {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	i := strings.LastIndex(base, "_")
	if i <= 0 || i == len(base)-1 {
		return "", "", fmt.Errorf("invalid prompt filename %q: expected '<key>_<provider>.prompt'", fileName)
	}
	return PromptKey(base[:i]), ModelProvider(base[i+1:]), nil
}

func (pm *PromptManager) register(key PromptKey, provider ModelProvider, content string) error {
	tmpl, err := template.New(string(key) + "_" + string(provider)).Option("missingkey=error").Parse(content)
	if err != nil {
		return fmt.Errorf("could not parse template: %w", err)
	}
	if _, ok := pm.prompts[key]; !ok {
		pm.prompts[key] = make(map[ModelProvider]*template.Template)
	}
	pm.prompts[key][provider] = tmpl
	return nil
}

// Get returns the provider-specific template, falling back to the default one.
func (pm *PromptManager) Get(key PromptKey, provider ModelProvider) (*template.Template, error) {
	byProvider, ok := pm.prompts[key]
	if !ok {
		return nil, fmt.Errorf("no prompts found for key '%s'", key)
	}
	if tmpl, ok := byProvider[provider]; ok {
		return tmpl, nil
	}
	if tmpl, ok := byProvider[DefaultProvider]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("no template for key '%s' and provider '%s'", key, provider)
}

func (pm *PromptManager) Render(key PromptKey, provider ModelProvider, data PromptData) (string, error) {
	tmpl, err := pm.Get(key, provider)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
