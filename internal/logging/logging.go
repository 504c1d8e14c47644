// Package logging builds the slog loggers used by the command line tools.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Level picks the minimum level from the usual -debug and -quiet flags.
// Debug wins when both are set.
func Level(debug, quiet bool) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case quiet:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// NewHandler returns a text handler for interactive output and a JSON
// handler otherwise.
func NewHandler(w io.Writer, interactive bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if interactive {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// New returns a logger writing to f, formatted for a human when f is a terminal.
func New(f *os.File, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(f, term.IsTerminal(int(f.Fd())), level))
}
