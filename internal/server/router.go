package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/server/handler"
)

const (
	webhookPath    = "/api/v1/webhook/github"
	requestTimeout = 60 * time.Second
)

// NewRouter wires the health probe and the GitHub webhook that feeds council
// reviews into the dispatcher.
func NewRouter(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":   "ok",
			"provider": cfg.AI.Provider,
			"model":    cfg.AI.Model,
		})
	})

	webhooks := handler.NewWebhookHandler(cfg, dispatcher, logger)
	r.Group(func(r chi.Router) {
		if cfg.Server.MaxPayloadBytes > 0 {
			r.Use(middleware.RequestSize(cfg.Server.MaxPayloadBytes))
		}
		r.Post(webhookPath, webhooks.Handle)
	})

	return r
}

// requestLogger logs one line per request through the service logger, tagged
// with the GitHub delivery id when present.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if delivery := r.Header.Get("X-GitHub-Delivery"); delivery != "" {
				attrs = append(attrs, "delivery_id", delivery)
			}
			logger.Debug("http request", attrs...)
		})
	}
}
