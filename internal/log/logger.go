package log

import (
	"io"
	"log/slog"
)

// Level returns the slog level matching the verbose flag: Debug when
// verbose, Warn otherwise.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger creates a new slog.Logger writing human-readable lines.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - level: The minimum level to log
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewJSONLogger creates a new slog.Logger that outputs JSON format.
// Useful for structured log aggregation when running the worker as a
// service.
//
// Parameters:
//   - w: The io.Writer to write log output to
//   - level: The minimum level to log
//
// Returns a *slog.Logger configured for JSON output.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
