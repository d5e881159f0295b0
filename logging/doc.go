// Package logging provides a minimal logging interface and adapters.
//
// Every component in this module accepts a Logger through its functional
// options and defaults to NoOpLogger:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	eng := engine.New(engine.WithLogger(logger))
//
// Arguments follow slog's alternating key/value convention.
package logging
