// Package logger constructs the process-wide structured logger. Every
// component in the core receives a *slog.Logger via constructor injection
// rather than reaching for a package-level global.
package logger

import (
	"log/slog"
	"os"
)

// Format selects the slog handler.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// New builds a *slog.Logger. Production deployments use JSON so log
// aggregators can parse fields; FormatText is for local development.
func New(format Format, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
