package logger

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a Logger implementation for tests that captures all
// log messages instead of writing them anywhere. Loggers derived with
// WithField/WithFields share the parent's capture buffer.
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	fields   map[string]interface{}
	parent   *TestLogger
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nopLogger := zerolog.Nop()
	return &TestLogger{
		messages: make([]LogMessage, 0),
		fields:   make(map[string]interface{}),
		zerolog:  &nopLogger,
	}
}

func (l *TestLogger) root() *TestLogger {
	if l.parent != nil {
		return l.parent
	}
	return l
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	r := l.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  merged,
	})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// WithField returns a derived logger sharing the same capture buffer
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a derived logger sharing the same capture buffer
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	child := &TestLogger{
		fields:  make(map[string]interface{}, len(l.fields)+len(fields)),
		parent:  l.root(),
		zerolog: l.zerolog,
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

// WithError adds an error field
func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// GetZerolog returns a no-op zerolog instance
func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// Messages returns a copy of all captured messages
func (l *TestLogger) Messages() []LogMessage {
	r := l.root()
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LogMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// HasMessage reports whether any captured message at the given level
// contains the given substring.
func (l *TestLogger) HasMessage(level, substr string) bool {
	for _, m := range l.Messages() {
		if m.Level == level && strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// Clear drops all captured messages
func (l *TestLogger) Clear() {
	r := l.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = r.messages[:0]
}
