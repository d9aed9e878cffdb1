// Package logging implements structured key/value logging on top of go-kit.
//
// Loggers are built explicitly with New and passed to the components that
// need them; there is no package level backend.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Format is a logging format.
type Format uint

const (
	// FmtLogfmt is the "logfmt" logging format.
	FmtLogfmt Format = iota
	// FmtJSON is the JSON logging format.
	FmtJSON
)

// String returns the string representation of a Format.
func (f Format) String() string {
	switch f {
	case FmtLogfmt:
		return "logfmt"
	case FmtJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", uint(f))
	}
}

// ParseFormat parses "logfmt" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(s) {
	case "", "LOGFMT":
		return FmtLogfmt, nil
	case "JSON":
		return FmtJSON, nil
	default:
		return 0, fmt.Errorf("logging: invalid log format: '%s'", s)
	}
}

// Level is a log level.
type Level uint

const (
	// LevelDebug is the log level for debug messages.
	LevelDebug Level = iota
	// LevelInfo is the log level for informative messages.
	LevelInfo
	// LevelWarn is the log level for warning messages.
	LevelWarn
	// LevelError is the log level for error messages.
	LevelError
)

func (l Level) toOption() level.Option {
	switch l {
	case LevelDebug:
		return level.AllowDebug()
	case LevelInfo:
		return level.AllowInfo()
	case LevelWarn:
		return level.AllowWarn()
	default:
		return level.AllowError()
	}
}

// String returns the string representation of a Level.
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
		return fmt.Sprintf("Level(%d)", uint(l))
	}
}

// ParseLevel parses a level name, case-insensitively. Empty means INFO.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("logging: invalid log level: '%s'", s)
	}
}

// Logger is a logger instance.
type Logger struct {
	logger log.Logger
	level  Level
}

// New builds a logger writing to w. A nil w discards everything.
func New(w io.Writer, format Format, lvl Level) *Logger {
	if w == nil {
		return NewNop()
	}

	var logger log.Logger
	w = log.NewSyncWriter(w)
	switch format {
	case FmtJSON:
		logger = log.NewJSONLogger(w)
	default:
		logger = log.NewLogfmtLogger(w)
	}
	logger = level.NewFilter(logger, lvl.toOption())
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	return &Logger{logger: logger, level: lvl}
}

// NewNop returns a logger that drops every record.
func NewNop() *Logger {
	return &Logger{logger: log.NewNopLogger(), level: LevelError}
}

// Debug logs the message and key value pairs at the Debug log level.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if l.level > LevelDebug {
		return
	}
	keyvals = append([]any{"msg", msg}, keyvals...)
	_ = level.Debug(l.logger).Log(keyvals...)
}

// Info logs the message and key value pairs at the Info log level.
func (l *Logger) Info(msg string, keyvals ...any) {
	if l.level > LevelInfo {
		return
	}
	keyvals = append([]any{"msg", msg}, keyvals...)
	_ = level.Info(l.logger).Log(keyvals...)
}

// Warn logs the message and key value pairs at the Warn log level.
func (l *Logger) Warn(msg string, keyvals ...any) {
	if l.level > LevelWarn {
		return
	}
	keyvals = append([]any{"msg", msg}, keyvals...)
	_ = level.Warn(l.logger).Log(keyvals...)
}

// Error logs the message and key value pairs at the Error log level.
func (l *Logger) Error(msg string, keyvals ...any) {
	keyvals = append([]any{"msg", msg}, keyvals...)
	_ = level.Error(l.logger).Log(keyvals...)
}

// With returns a clone of the logger with the provided key/value pairs
// added via log.With.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{
		logger: log.With(l.logger, keyvals...),
		level:  l.level,
	}
}

// Level returns the logger's minimum level.
func (l *Logger) Level() Level {
	return l.level
}
