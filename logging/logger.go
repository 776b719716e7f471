// Package logging configures the structured logger used for harness status output.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
)

// New returns a logger that writes human-readable lines to w. Debug-level messages, which
// include every request and response the harness makes outside of a test, are only shown
// when debug is true.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    color.NoColor,
	}))
}
