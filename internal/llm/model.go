package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/code-council/internal/config"
)

const defaultOllamaHost = "http://localhost:11434"

// NewModel builds the language model client for the configured provider.
func NewModel(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (llms.Model, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini_api_key is not set for the gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.Model),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)
	case "ollama":
		host := cfg.OllamaHost
		if host == "" {
			host = defaultOllamaHost
		}
		return ollama.New(
			ollama.WithServerURL(host),
			ollama.WithHTTPClient(newOllamaHTTPClient(cfg.Timeout)),
			ollama.WithModel(cfg.Model),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func newOllamaHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}
