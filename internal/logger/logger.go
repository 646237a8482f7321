package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a slog.Logger configured from the application environment and
// the SERVER_LOG_LEVEL setting. Development environments drop to debug unless
// a level is set explicitly.
func New(env, level string) *slog.Logger {
	handler := slog.NewJSONHandler(defaultWriter(), &slog.HandlerOptions{
		Level: parseLevel(env, level),
	})
	return slog.New(handler)
}

func defaultWriter() io.Writer {
	return os.Stdout
}

func parseLevel(env, level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	switch env {
	case "production", "staging":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
