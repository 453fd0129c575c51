// Package log configures structured logging for casedash using log/slog.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Level maps the verbosity flags to a slog level. quiet wins over verbose.
func Level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelWarn
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Setup installs a TextHandler on stderr as the default logger.
func Setup(verbose, quiet bool) {
	SetupWriter(os.Stderr, false, verbose, quiet)
}

// SetupWriter installs a text or JSON handler writing to w. The server
// uses JSON so request logs can be shipped as-is.
func SetupWriter(w io.Writer, json, verbose, quiet bool) {
	opts := &slog.HandlerOptions{Level: Level(verbose, quiet)}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}
