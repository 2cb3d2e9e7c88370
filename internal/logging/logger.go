package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the global JSON logger. It runs before config.Load, so the
// level comes straight from LOG_LEVEL; after the handler swap in main all
// records flow through the multi-handler instead.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})
	slog.SetDefault(slog.New(handler))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
