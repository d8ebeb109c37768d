// SPDX-License-Identifier: AGPL-3.0-only

// Package logging provides the leveled logger used across the application.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// LogLevel represents a logging level
type LogLevel int

// Log levels
const (
	Debug LogLevel = iota
	Info
	Warn
	Error
	Fatal
)

// String returns the lower-case name of the level
func (l LogLevel) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "info"
	}
}

// ParseLevel converts a level name to a LogLevel, defaulting to Info
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	case "fatal":
		return Fatal
	default:
		return Info
	}
}

// Options configures a Logger
type Options struct {
	Level LogLevel
	// Format is one of text, json or logfmt
	Format string
	Output io.Writer
	Prefix string
	// Timestamps adds a timestamp to every line
	Timestamps bool
}

// Logger is a leveled printf-style logger
type Logger struct {
	base   *log.Logger
	closer io.Closer
}

// New creates a logger from options
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	base := log.NewWithOptions(out, log.Options{
		Level:           toCharmLevel(opts.Level),
		Formatter:       parseFormatter(opts.Format),
		ReportTimestamp: opts.Timestamps,
		Prefix:          opts.Prefix,
	})
	return &Logger{base: base}
}

// FileLogger creates a logger that appends to the file at path
func FileLogger(path string, level LogLevel) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := New(Options{Level: level, Output: f, Format: "logfmt", Timestamps: true})
	l.closer = f
	return l, nil
}

// With returns a child logger that adds key/value pairs to every line
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{base: l.base.With(keyvals...)}
}

// SetLevel changes the minimum level that is written
func (l *Logger) SetLevel(level LogLevel) {
	l.base.SetLevel(toCharmLevel(level))
}

// Debugf logs at debug level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.base.Debugf(format, args...)
}

// Infof logs at info level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.base.Infof(format, args...)
}

// Warnf logs at warn level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.base.Warnf(format, args...)
}

// Errorf logs at error level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.base.Errorf(format, args...)
}

// Fatalf logs at fatal level and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.base.Fatalf(format, args...)
}

// Printf logs at info level. It lets the logger stand in wherever a
// Printf-only logger is expected (robfig/cron).
func (l *Logger) Printf(format string, args ...interface{}) {
	l.base.Infof(format, args...)
}

// Close releases the underlying file, if the logger owns one
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(Options{Level: Info})
)

// GetDefaultLogger returns the process-wide logger
func GetDefaultLogger() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger replaces the process-wide logger
func SetDefaultLogger(l *Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

func toCharmLevel(level LogLevel) log.Level {
	switch level {
	case Debug:
		return log.DebugLevel
	case Warn:
		return log.WarnLevel
	case Error:
		return log.ErrorLevel
	case Fatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func parseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
