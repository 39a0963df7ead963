package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/polkiloo/routeshop/internal/config"
)

// New creates a preconfigured slog.Logger.
func New(cfg *config.Config) *slog.Logger {
	return NewWithLevel(cfg.LogLevel)
}

// NewWithLevel creates a JSON logger writing to stdout; unknown levels fall back to info.
func NewWithLevel(level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
