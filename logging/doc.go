// Package logging provides a minimal logging interface and adapters for the newsroom.
//
// The Logger interface defines the levelled methods (Debug, Info, Warn, Error)
// that the graph runtime, the supervisor and the workers use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (tests, library embedding)
//   - helpers for the recurring records: model calls, tool calls and runs
//
// Usage:
//
//	logger := logging.New(&logging.Config{Level: logging.LogLevelDebug, Format: "text"})
//	room, err := newsroom.New(func(o *newsroom.Options) { o.Logger = logger })
//
// Arguments follow the log/slog key/value convention.
package logging
