package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-council/internal/config"
)

func TestRouter_Health(t *testing.T) {
	cfg := &config.Config{AI: config.AIConfig{Provider: "ollama", Model: "gemma3:latest"}}
	r := NewRouter(cfg, nil, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"status": "ok", "provider": "ollama", "model": "gemma3:latest"}, body)
}

func TestRouter_WebhookRequiresPost(t *testing.T) {
	r := NewRouter(&config.Config{}, nil, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, webhookPath, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
