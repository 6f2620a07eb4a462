package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/code-council/internal/council"
	"github.com/sevigo/code-council/internal/logger"
)

const envPrefix = "CC"

// Config holds the application's configuration values.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Database  DBConfig        `mapstructure:"database"`
	Logging   logger.Config   `mapstructure:"logging"`
	AI        AIConfig        `mapstructure:"ai"`
	Council   CouncilConfig   `mapstructure:"council"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	State     StateConfig     `mapstructure:"state"`
}

type ServerConfig struct {
	Port       string `mapstructure:"port"`
	MaxWorkers int    `mapstructure:"max_workers"`
	QueueSize  int    `mapstructure:"queue_size"`
	// MaxPayloadBytes bounds webhook request bodies.
	MaxPayloadBytes int64         `mapstructure:"max_payload_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GitHubConfig struct {
	AppID          int64  `mapstructure:"app_id"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	// Token is a personal access token used by the CLI instead of app credentials.
	Token string `mapstructure:"token"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the lib/pq connection string.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, sslMode)
}

// AIConfig configures the model used by every review agent.
type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	OllamaHost   string        `mapstructure:"ollama_host"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	// MaxCandidatesPerUnit bounds how many findings one model call may contribute.
	MaxCandidatesPerUnit int `mapstructure:"max_candidates_per_unit"`
}

var supportedProviders = []string{"ollama", "gemini"}

// Validate checks the AI settings for consistency.
func (c AIConfig) Validate() error {
	if !slices.Contains(supportedProviders, c.Provider) {
		return fmt.Errorf("unsupported LLM provider %q (supported: %s)", c.Provider, strings.Join(supportedProviders, ", "))
	}
	if c.Model == "" {
		return errors.New("ai.model must be set")
	}
	if c.Provider == "gemini" && c.GeminiAPIKey == "" {
		return errors.New("ai.gemini_api_key must be set for the gemini provider")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("ai.max_retries must be between 0 and 10, got %d", c.MaxRetries)
	}
	if c.MaxCandidatesPerUnit < 1 {
		return fmt.Errorf("ai.max_candidates_per_unit must be at least 1, got %d", c.MaxCandidatesPerUnit)
	}
	return nil
}

// CouncilConfig tunes the allocation and consolidation pipeline.
type CouncilConfig struct {
	Limits         council.Limits `mapstructure:",squash"`
	MaxAnnotations int            `mapstructure:"max_annotations"`
	MaxConcurrency int            `mapstructure:"max_concurrency"`
	MaxInline      int            `mapstructure:"max_inline"`
	// LexiconPath optionally points to a YAML file replacing the built-in tables.
	LexiconPath string `mapstructure:"lexicon_path"`
}

// Validate checks the council settings.
func (c CouncilConfig) Validate() error {
	if c.MaxAnnotations < 1 || c.MaxAnnotations > 100 {
		return fmt.Errorf("council.max_annotations must be between 1 and 100, got %d", c.MaxAnnotations)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("council.max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.Limits.MaxUnits < 0 || c.Limits.MaxUnitFiles < 0 {
		return errors.New("council unit limits must not be negative")
	}
	return nil
}

type RateLimitConfig struct {
	ReviewsPerHour int `mapstructure:"reviews_per_hour"`
	Burst          int `mapstructure:"burst"`
}

// StateConfig selects where delivery idempotency keys are kept.
type StateConfig struct {
	Backend string        `mapstructure:"backend"` // "memory" or "postgres"
	TTL     time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_workers", 5)
	v.SetDefault("server.queue_size", 100)
	v.SetDefault("server.max_payload_bytes", 25<<20)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Keys without a real default are still registered so environment
	// variables reach Unmarshal.
	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.webhook_secret", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.private_key_path", "keys/code-council-app.private-key.pem")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "council")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "council")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("ai.provider", "ollama")
	v.SetDefault("ai.model", "gemma3:latest")
	v.SetDefault("ai.ollama_host", "http://localhost:11434")
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.timeout", 2*time.Minute)
	v.SetDefault("ai.max_retries", 2)
	v.SetDefault("ai.max_candidates_per_unit", 5)

	v.SetDefault("council.max_unit_chars", council.DefaultMaxUnitChars)
	v.SetDefault("council.max_unit_files", council.DefaultMaxUnitFiles)
	v.SetDefault("council.max_file_chars", council.DefaultMaxFileChars)
	v.SetDefault("council.max_units", council.DefaultMaxUnits)
	v.SetDefault("council.max_annotations", council.DefaultMaxAnnotations)
	v.SetDefault("council.max_concurrency", 4)
	v.SetDefault("council.max_inline", 20)
	v.SetDefault("council.lexicon_path", "")

	v.SetDefault("rate_limit.reviews_per_hour", 5)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("state.backend", "postgres")
	v.SetDefault("state.ttl", 24*time.Hour)
}

// Load reads configuration from an optional config.yaml and CC_* environment
// variables. Required GitHub App settings are not checked here; see
// ValidateServer.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.AI.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Council.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads the configuration for the webhook server, which also needs
// GitHub App credentials.
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateServer checks the settings only the webhook server requires.
func (c *Config) ValidateServer() error {
	if c.GitHub.AppID == 0 {
		return errors.New("CC_GITHUB_APP_ID must be set")
	}
	if c.GitHub.WebhookSecret == "" {
		return errors.New("CC_GITHUB_WEBHOOK_SECRET must be set")
	}
	if c.State.Backend != "memory" && c.State.Backend != "postgres" {
		return fmt.Errorf("unsupported state backend %q", c.State.Backend)
	}
	return nil
}
