// Package telemetry carries the diagnostic logger and tracer used by the
// engine. Diagnostics are prefixed so they can be told apart from ordinary
// gameplay output.
package telemetry

import (
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DiagPrefix marks degraded-path diagnostics (recovered rule panics, hook
// failures, unknown action types, unknown phases).
const DiagPrefix = "[diag] "

// InstrumentationName is the tracer name used for engine spans.
const InstrumentationName = "github.com/nathoo/statuscore/engine"

// Logger exposes the logging capability the engine needs.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Discard drops every message.
var Discard Logger = LoggerFunc(func(string, ...any) {})

// Diag writes a diagnostic line. A nil logger is treated as Discard.
func Diag(l Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.Printf(DiagPrefix+"%s", fmt.Sprintf(format, args...))
}

// Tracer returns the engine tracer from the global provider. Unless the
// host installs a provider this is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
