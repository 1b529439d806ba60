// Package logging builds the structured slog logger used by the
// swaggerpage command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable consulted when no level is
// configured.
const EnvLevel = "LOG_LEVEL"

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn or error. Empty falls back to
	// LOG_LEVEL, then info.
	Level string

	// Format is "json" (default) or "text".
	Format string

	Service string
	Version string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// ParseLevel converts a case-insensitive level name to a slog.Level.
// "warning" is accepted as an alias of warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// New returns a logger carrying service and version attributes. Debug
// loggers also record the source location.
func New(opts Options) (*slog.Logger, error) {
	name := opts.Level
	if name == "" {
		name = os.Getenv(EnvLevel)
	}
	level, err := ParseLevel(name)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With(slog.String("service", opts.Service))
	}
	if opts.Version != "" {
		logger = logger.With(slog.String("version", opts.Version))
	}

	return logger, nil
}
