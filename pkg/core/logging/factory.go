// ============================================================================
// unilang - Command Instruction Core
// ============================================================================
//
// Package:     logging
// Description: Factory functions for component loggers
// Author:      Mike Stoffels
// Created:     2025-10-02
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"sort"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
	defaultMu     sync.RWMutex
)

// Fields is a set of structured log fields
type Fields map[string]interface{}

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service or component name, used as log prefix
	ServiceName string

	// Log level (debug, info, warn, error)
	Level string

	// Output format: "text" (default), "json" or "logfmt"
	Format string

	// Output writer (default: os.Stderr)
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer

	// ReportTimestamp adds a timestamp to every entry
	ReportTimestamp bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       LevelForVerbosity(VerbosityFromEnv()),
		Format:      "text",
	}
}

// Logger wraps a charmbracelet logger with the key/value API used by all
// components
type Logger struct {
	base *charmlog.Logger
	name string
}

// NewLogger creates a logger from configuration
func NewLogger(cfg LoggerConfig) *Logger {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	base := charmlog.NewWithOptions(output, charmlog.Options{
		Prefix:          cfg.ServiceName,
		Level:           parseLevel(cfg.Level),
		ReportTimestamp: cfg.ReportTimestamp,
		TimeFormat:      time.RFC3339,
		Formatter:       parseFormat(cfg.Format),
	})

	return &Logger{base: base, name: cfg.ServiceName}
}

// New creates a logger with the default configuration
func New(name string) *Logger {
	return NewLogger(DefaultLoggerConfig(name))
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	cfg := DefaultLoggerConfig("discard")
	cfg.Output = io.Discard
	cfg.Level = "error"
	return NewLogger(cfg)
}

// Default returns the process-wide default logger
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		if defaultLogger == nil {
			defaultLogger = New("unilang")
		}
		defaultMu.Unlock()
	})

	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide default logger
func SetDefault(l *Logger) {
	defaultOnce.Do(func() {})
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// WithField returns a child logger carrying an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{base: l.base.With(key, value), name: l.name}
}

// WithFields returns a child logger carrying all fields, in key order
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{base: l.base.With(toKeyValues(fields)...), name: l.name}
}

// WithLevel returns a child logger with a different level
func (l *Logger) WithLevel(level Level) *Logger {
	child := l.base.With()
	child.SetLevel(parseLevel(level.String()))
	return &Logger{base: child, name: l.name}
}

// IsDebug reports whether debug entries are emitted
func (l *Logger) IsDebug() bool {
	return l.base.GetLevel() <= charmlog.DebugLevel
}

// Debug logs a debug message with key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.base.Debug(msg, keysAndValues...)
}

// Info logs an info message with key/value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.base.Info(msg, keysAndValues...)
}

// Warn logs a warning message with key/value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.base.Warn(msg, keysAndValues...)
}

// Error logs an error message with key/value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.base.Error(msg, keysAndValues...)
}

// parseLevel converts a string level to a charm level
func parseLevel(level string) charmlog.Level {
	switch level {
	case "trace", "debug":
		return charmlog.DebugLevel
	case "info":
		return charmlog.InfoLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	case "fatal":
		return charmlog.FatalLevel
	default:
		return charmlog.InfoLevel
	}
}

func parseFormat(format string) charmlog.Formatter {
	switch format {
	case "json":
		return charmlog.JSONFormatter
	case "logfmt":
		return charmlog.LogfmtFormatter
	default:
		return charmlog.TextFormatter
	}
}

// toKeyValues flattens fields into sorted key/value pairs
func toKeyValues(fields Fields) []interface{} {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}
