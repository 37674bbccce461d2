package dirq

import ilog "github.com/pavelsr/dirq/internal/logging"

// LogField is a single structured logging key/value pair.
type LogField struct {
	Key   string
	Value interface{}
}

// F builds a LogField.
func F(key string, value interface{}) LogField {
	return LogField{Key: key, Value: value}
}

// Logger is the structured logging interface accepted by WithLogger.
// Implement it to route the engine's internal debug/info/warn/error
// messages into an application's own logging system.
type Logger interface {
	Debug(msg string, fields ...LogField)
	Info(msg string, fields ...LogField)
	Warn(msg string, fields ...LogField)
	Error(msg string, fields ...LogField)
}

// NoopLogger discards every message. It is the default when no logger is
// configured via WithLogger.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...LogField) {}
func (NoopLogger) Info(string, ...LogField)  {}
func (NoopLogger) Warn(string, ...LogField)  {}
func (NoopLogger) Error(string, ...LogField) {}

// loggerAdapter lets a public Logger satisfy the internal engine's
// logging.Logger interface without the engine package depending on this
// package's types.
type loggerAdapter struct{ l Logger }

func (a loggerAdapter) Debug(msg string, fields ...ilog.Field) { a.l.Debug(msg, convertFields(fields)...) }
func (a loggerAdapter) Info(msg string, fields ...ilog.Field)  { a.l.Info(msg, convertFields(fields)...) }
func (a loggerAdapter) Warn(msg string, fields ...ilog.Field)  { a.l.Warn(msg, convertFields(fields)...) }
func (a loggerAdapter) Error(msg string, fields ...ilog.Field) { a.l.Error(msg, convertFields(fields)...) }

func convertFields(fields []ilog.Field) []LogField {
	out := make([]LogField, len(fields))
	for i, f := range fields {
		out[i] = LogField{Key: f.Key, Value: f.Value}
	}
	return out
}
