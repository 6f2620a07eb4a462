package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

// ErrNoJSON is returned when a model response holds no JSON document.
var ErrNoJSON = errors.New("no JSON object found in response")

type rawComment struct {
	File       string `json:"file"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

type rawOutput struct {
	Comments []json.RawMessage `json:"comments"`
}

// ParseCandidates decodes a model response of the form {"comments": [...]}.
// Code fences and any text around the JSON document are ignored. A bare array
// of comments is accepted as well. Values are passed through untouched apart
// from a missing line_end, which defaults to line_start; validation is left to
// consolidation. Entries that do not decode as a comment are skipped so the
// rest of the response survives.
func ParseCandidates(response string) ([]core.CandidateAnnotation, error) {
	doc, err := extractJSON(stripCodeFence(response))
	if err != nil {
		return nil, err
	}

	var out rawOutput
	if strings.HasPrefix(doc, "[") {
		err = json.Unmarshal([]byte(doc), &out.Comments)
	} else {
		err = json.Unmarshal([]byte(doc), &out)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	candidates := make([]core.CandidateAnnotation, 0, len(out.Comments))
	for _, entry := range out.Comments {
		var c rawComment
		if err := json.Unmarshal(entry, &c); err != nil {
			continue
		}
		if c.LineEnd == 0 {
			c.LineEnd = c.LineStart
		}
		candidates = append(candidates, core.CandidateAnnotation{
			File:       c.File,
			LineStart:  c.LineStart,
			LineEnd:    c.LineEnd,
			Severity:   core.Severity(c.Severity),
			Category:   c.Category,
			Message:    c.Message,
			Suggestion: c.Suggestion,
		})
	}
	return candidates, nil
}

// stripCodeFence removes a ```json ... ``` wrapper if the model added one.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	start := strings.Index(trimmed, "```")
	if start < 0 {
		return trimmed
	}
	inner := trimmed[start+3:]
	if nl := strings.Index(inner, "\n"); nl >= 0 {
		inner = inner[nl+1:]
	}
	if end := strings.LastIndex(inner, "```"); end >= 0 {
		inner = inner[:end]
	}
	return strings.TrimSpace(inner)
}

// extractJSON returns the outermost JSON object or array in s.
func extractJSON(s string) (string, error) {
	open := strings.IndexAny(s, "{[")
	if open < 0 {
		return "", ErrNoJSON
	}
	closer := "}"
	if s[open] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end < open {
		return "", ErrNoJSON
	}
	return s[open : end+1], nil
}
