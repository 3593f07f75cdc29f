package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps LOG_LEVEL values onto slog levels. Unknown values fall back
// to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// NewStdoutHandler returns the JSON handler used for process logs.
func NewStdoutHandler(level string) slog.Handler {
	return newJSONHandler(os.Stdout, level)
}

// Setup installs a JSON stdout logger as the slog default.
func Setup(level string) {
	slog.SetDefault(slog.New(NewStdoutHandler(level)))
}

func newJSONHandler(w io.Writer, level string) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
}
