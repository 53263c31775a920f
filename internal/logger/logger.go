// Package logger is a small leveled wrapper around the standard library logger.
//
// Output goes to stderr by default so that stdout stays free for the MCP
// protocol and for CLI reports.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log verbosity; higher levels print more.
type Level int

const (
	LevelInfo Level = iota
	LevelDebug
	LevelTrace
)

// EnvLevel is the environment variable consulted by FromEnv.
const EnvLevel = "SPOTSIZE_LOG_LEVEL"

type Logger struct {
	*log.Logger
	level Level
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.Logger = log.New(w, l.Logger.Prefix(), l.Logger.Flags())
	}
}

func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.Logger = log.New(l.Logger.Writer(), prefix, l.Logger.Flags())
	}
}

func WithFlags(flags int) Option {
	return func(l *Logger) {
		l.Logger = log.New(l.Logger.Writer(), l.Logger.Prefix(), flags)
	}
}

func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level = level
	}
}

func New(options ...Option) *Logger {
	l := &Logger{
		Logger: log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile),
		level:  LevelInfo,
	}

	for _, opt := range options {
		opt(l)
	}

	return l
}

// Discard returns a logger that drops everything; handy for tests.
func Discard() *Logger {
	return New(WithOutput(io.Discard))
}

// ParseLevel maps "info", "debug" and "trace" (any case) to a Level.
// Unknown or empty values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "trace":
		return LevelTrace
	default:
		return LevelInfo
	}
}

// FromEnv returns the level named by SPOTSIZE_LOG_LEVEL, or fallback when unset.
func FromEnv(fallback Level) Level {
	if v := os.Getenv(EnvLevel); v != "" {
		return ParseLevel(v)
	}
	return fallback
}

func (l *Logger) SetLevel(level Level) {
	l.level = level
}

func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LevelDebug {
		l.printf(LevelDebug, format, args...)
	}
}

func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LevelTrace {
		l.printf(LevelTrace, format, args...)
	}
}

func (l *Logger) printf(level Level, format string, args ...interface{}) {
	var prefix string
	switch level {
	case LevelInfo:
		prefix = "INFO: "
	case LevelDebug:
		prefix = "DEBUG: "
	case LevelTrace:
		prefix = "TRACE: "
	}
	l.Logger.Output(3, prefix+sprintf(format, args...))
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.Logger.Fatalf("FATAL: "+format, args...)
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
