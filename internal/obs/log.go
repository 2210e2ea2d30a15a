// Package obs holds logging and metrics shared across the service.
package obs

import (
	"log/slog"
	"os"
)

// NewLogger returns the service logger. JSON output is the default; anything
// else selects the human-readable text handler for local development.
func NewLogger(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
