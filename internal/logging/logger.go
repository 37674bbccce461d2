// Package logging provides the structured logging interface used across
// the engine and its callers.
package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/pavelsr/dirq/internal/codec"
)

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo for informational messages
	LevelInfo
	// LevelWarn for warning messages
	LevelWarn
	// LevelError for error messages
	LevelError
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

// Logger is the interface used for all structured logging.
// Callers can implement this interface to integrate with their own logging system.
type Logger interface {
	// Debug logs a debug message
	Debug(msg string, fields ...Field)

	// Info logs an informational message
	Info(msg string, fields ...Field)

	// Warn logs a warning message
	Warn(msg string, fields ...Field)

	// Error logs an error message
	Error(msg string, fields ...Field)
}

// Field represents a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

// F is a convenience function to create a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// NoopLogger discards every message.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}

// DefaultLogger is a simple logger that writes to stderr.
type DefaultLogger struct {
	minLevel Level
	logger   *log.Logger
}

// NewDefaultLogger creates a new default logger with the specified minimum level.
func NewDefaultLogger(minLevel Level) *DefaultLogger {
	return &DefaultLogger{
		minLevel: minLevel,
		logger:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Debug implements Logger.
func (l *DefaultLogger) Debug(msg string, fields ...Field) {
	if l.minLevel <= LevelDebug {
		l.log(LevelDebug, msg, fields...)
	}
}

// Info implements Logger.
func (l *DefaultLogger) Info(msg string, fields ...Field) {
	if l.minLevel <= LevelInfo {
		l.log(LevelInfo, msg, fields...)
	}
}

// Warn implements Logger.
func (l *DefaultLogger) Warn(msg string, fields ...Field) {
	if l.minLevel <= LevelWarn {
		l.log(LevelWarn, msg, fields...)
	}
}

// Error implements Logger.
func (l *DefaultLogger) Error(msg string, fields ...Field) {
	if l.minLevel <= LevelError {
		l.log(LevelError, msg, fields...)
	}
}

func (l *DefaultLogger) log(level Level, msg string, fields ...Field) {
	if len(fields) == 0 {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}

	fieldStr := ""
	for i, f := range fields {
		if i > 0 {
			fieldStr += " "
		}
		fieldStr += f.Key + "=" + formatFieldValue(f.Value)
	}

	l.logger.Printf("[%s] %s %s", level, msg, fieldStr)
}

// formatFieldValue renders a field's value for a single log line. Strings
// are percent-escaped with the same encoding the on-disk record codec
// uses, so an id or path carrying '=', '%', a newline, or another control
// byte never splits the line; spaces are left as they are.
func formatFieldValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return codec.EscapeValue(v)
	default:
		return fmt.Sprint(v)
	}
}
