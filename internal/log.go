package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel orders verbosity; higher levels include the lower ones
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// ParseLogLevel reads ERROR, WARN, INFO or DEBUG, case-insensitively
func ParseLogLevel(s string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError, true
	case "WARN", "WARNING":
		return LogLevelWarn, true
	case "INFO":
		return LogLevelInfo, true
	case "DEBUG":
		return LogLevelDebug, true
	}
	return LogLevelInfo, false
}

// Logger writes leveled lines through the standard logger, tagged with a
// component prefix such as "[API]"
type Logger struct {
	component string
	level     LogLevel
}

// NewLogger creates a logger for a component at the given level
func NewLogger(component string, level LogLevel) *Logger {
	return &Logger{component: component, level: level}
}

// NewDefaultLogger creates a component logger at the LOG_LEVEL environment level, INFO if unset
func NewDefaultLogger(component string) *Logger {
	level, ok := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if !ok {
		level = LogLevelInfo
	}
	return NewLogger(component, level)
}

// Enabled reports whether messages at level are written
func (l *Logger) Enabled(level LogLevel) bool {
	return l.level >= level
}

func (l *Logger) printf(level LogLevel, tag, format string, args ...interface{}) {
	if l.Enabled(level) {
		log.Printf("["+l.component+"] "+tag+format, args...)
	}
}

// Error logs failures the caller cannot fix
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LogLevelError, "[ERROR] ", format, args...)
}

// Warn logs rejected requests and degraded states
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LogLevelWarn, "[WARN] ", format, args...)
}

// Info logs lifecycle events
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LogLevelInfo, "", format, args...)
}

// Debug logs per-request detail
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LogLevelDebug, "[DEBUG] ", format, args...)
}
