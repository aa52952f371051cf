// Package log provides logging utilities for codescan.
//
// It implements RunLogHandler, an slog.Handler wrapper that mirrors
// warnings and errors from pipeline step code into the executing run's
// persisted log, so diagnostics emitted deep inside a step survive in the
// durable execution record alongside the engine's own progress lines.
package log
