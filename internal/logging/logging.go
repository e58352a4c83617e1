// Package logging builds the process slog logger from config values.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel normalizes a log level string. Unknown values return
// slog.LevelInfo with an error.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("invalid log level")
	}
}

type Options struct {
	Level  string
	Format string // "text" or "json"
	Writer io.Writer
}

// New constructs a logger and installs it as the slog default.
func New(opt Options) (*slog.Logger, error) {
	level, err := ParseLevel(opt.Level)
	if err != nil {
		return nil, err
	}
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	ho := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opt.Format)) {
	case "json":
		h = slog.NewJSONHandler(w, ho)
	case "", "text":
		h = slog.NewTextHandler(w, ho)
	default:
		return nil, errors.New("invalid log format")
	}
	lg := slog.New(h)
	slog.SetDefault(lg)
	return lg, nil
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
