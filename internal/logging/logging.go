// Package logging builds the leveled loggers shared by the viewer, the camera
// system and the bake tool.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelOff disables all output.
const LevelOff = "off"

// ParseLevel maps a config level name to a slog level.
// ok is false for "off"; unknown names fall back to info.
func ParseLevel(level string) (lvl slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelOff:
		return 0, false
	case "debug":
		return slog.LevelDebug, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, true
	}
}

// NewLogger creates a text logger writing to w (stderr when nil).
// Supported levels: debug, info, warn, error, off
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl, ok := ParseLevel(level)
	if !ok {
		return Discard()
	}
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WithComponent returns a logger with component attribute
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithClip returns a logger with clip attribute
func WithClip(logger *slog.Logger, clip string) *slog.Logger {
	return logger.With("clip", clip)
}
