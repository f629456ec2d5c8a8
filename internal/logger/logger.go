// Package logger provides the structured logger injected into the core components.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the logging interface used by the aggregation and summarization pipeline.
// Arguments after msg are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New returns a Logger writing text records to w. Debug records are only emitted when verbose is set.
func New(w io.Writer, verbose bool) Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Default returns a stderr logger.
func Default(verbose bool) Logger {
	return New(os.Stderr, verbose)
}

// Nop discards everything.
func Nop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
