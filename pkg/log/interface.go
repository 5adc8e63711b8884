// Package log provides structured logging for lifelines model operations.
//
// The package defines a minimal, slog-compatible logging interface so the
// backend can be swapped without touching call sites, plus survival-specific
// structured attribute keys (operation types, subject counts, fit metrics).
// A zerolog-backed provider is included and used by default; tests capture
// output through TestLogger.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("survival").With(
//	    log.ModelNameKey, "AalenAdditiveFitter",
//	)
//	logger.Info("fit started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1000,
//	    log.CovariatesKey, 5,
//	)

package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's
// log/slog. Fields are alternating key-value pairs. With returns a
// contextual logger carrying pre-populated fields.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	// Used for per-step diagnostic output that is disabled by default.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	// Warnings flag conditions that do not stop fitting, e.g. a
	// per-step convergence failure handled by the zero-coefficient
	// fallback.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is a bare error value it is attached under the
	// error key and its stack trace is extracted when available.
	Error(msg string, fields ...any)

	// With returns a new Logger that includes the given fields in every
	// subsequent message.
	//
	// Example:
	//
	//	fitLogger := logger.With(
	//	    log.ModelNameKey, "AalenAdditiveFitter",
	//	    log.ComponentKey, "survival",
	//	)
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given
	// level. Use it to skip expensive field construction for disabled
	// levels.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels; values match slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It exists for dependency
// injection; tests swap in TestLoggerProvider.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers from this provider.
	SetLevel(level Level)
}
