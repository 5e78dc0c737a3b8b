// Package app holds application-wide runtime services shared by the use
// case and interface layers.
package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Logger interface for app layer
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// LogLevel controls which messages a leveled logger emits
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// LogLevelFromString converts a string to LogLevel
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		// Default to WARN level if not specified or invalid
		return LogLevelWarn
	}
}

// leveledLogger writes to a single writer with level filtering
type leveledLogger struct {
	mu       sync.RWMutex
	minLevel LogLevel
	output   io.Writer
}

// NewLogger creates a logger with the specified minimum level
func NewLogger(minLevel LogLevel, output io.Writer) Logger {
	return &leveledLogger{
		minLevel: minLevel,
		output:   output,
	}
}

func (l *leveledLogger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, "DEBUG", format, args...)
}

func (l *leveledLogger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, "INFO", format, args...)
}

func (l *leveledLogger) Warn(format string, args ...interface{}) {
	l.log(LogLevelWarn, "WARN", format, args...)
}

func (l *leveledLogger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, "ERROR", format, args...)
}

func (l *leveledLogger) log(level LogLevel, prefix string, format string, args ...interface{}) {
	l.mu.RLock()
	minLevel := l.minLevel
	output := l.output
	l.mu.RUnlock()

	if level >= minLevel {
		fmt.Fprintf(output, "%s: %s\n", prefix, fmt.Sprintf(format, args...))
	}
}

// globalLogger is the logger instance used by the app layer
var (
	loggerMu     sync.RWMutex
	globalLogger Logger = NewLogger(LogLevelWarn, os.Stderr)
)

// InitLogger replaces the global logger with one filtered at the given
// level string (debug, info, warn, error)
func InitLogger(level string) {
	SetLogger(NewLogger(LogLevelFromString(level), os.Stderr))
}

// SetLogger sets the global logger for the app layer
func SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	loggerMu.Lock()
	globalLogger = logger
	loggerMu.Unlock()
}

// GetLogger returns the current logger
func GetLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}
