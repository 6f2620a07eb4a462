package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const defaultLogFile = "code-council.log"

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	// File is used when Output is "file".
	File string `mapstructure:"file"`
}

// Writer resolves the configured output. The returned close function is a
// no-op for the standard streams.
func Writer(cfg Config) (io.Writer, func()) {
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		return os.Stderr, func() {}
	case "file":
		path := cfg.File
		if path == "" {
			path = defaultLogFile
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", path, err)
			return os.Stdout, func() {}
		}
		return f, func() { _ = f.Close() }
	default:
		return os.Stdout, func() {}
	}
}

// ParseLevel maps a level name onto slog; unknown names fall back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger builds a slog logger writing to output, or to the configured
// destination when output is nil.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output, _ = Writer(cfg)
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}

// Component tags every record of the returned logger with the component name.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With("component", name)
}
