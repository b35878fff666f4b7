package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-logr/logr"
)

const (
	FormatJSON = "json"
	FormatText = "text"

	levelDebug = "debug"
	levelInfo  = "info"
	levelWarn  = "warn"
	levelError = "error"
)

// New builds the process logger. logr verbosity V(1) maps to slog debug,
// so LOG_LEVEL=debug surfaces authorization rejections.
func New(level, format string, w io.Writer) logr.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, FormatText) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return logr.FromSlogHandler(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case levelDebug:
		return slog.LevelDebug
	case levelWarn:
		return slog.LevelWarn
	case levelError:
		return slog.LevelError
	case levelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
