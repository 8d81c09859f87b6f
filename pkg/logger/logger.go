package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"doc-intel-pipeline/internal/domain"

	"github.com/rs/zerolog"
)

// AppLogger implements the domain.Logger interface on top of zerolog
type AppLogger struct {
	zl zerolog.Logger
}

// Options configures the logger
type Options struct {
	Level   string
	Format  string // console or json
	Service string
	Writer  io.Writer
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(levelStr string) domain.Logger {
	return New(Options{Level: levelStr, Format: "console"})
}

// New builds a logger from options
func New(opts Options) *AppLogger {
	out := opts.Writer
	if out == nil {
		out = os.Stdout
	}

	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime, NoColor: opts.Writer != nil}
	}

	ctx := zerolog.New(out).Level(parseLogLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}

	return &AppLogger{zl: ctx.Logger()}
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	l.zl.Info().Fields(pairs(fields)).Msg(msg)
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	l.zl.Error().Err(err).Fields(pairs(fields)).Msg(msg)
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	l.zl.Debug().Fields(pairs(fields)).Msg(msg)
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	l.zl.Warn().Fields(pairs(fields)).Msg(msg)
}

// With returns a child logger that always carries the given fields
func (l *AppLogger) With(fields ...interface{}) *AppLogger {
	return &AppLogger{zl: l.zl.With().Fields(pairs(fields)).Logger()}
}

// pairs drops a trailing key without a value and stringifies non-string keys,
// so callers can pass loosely built field lists.
func pairs(fields []interface{}) []interface{} {
	n := len(fields) - len(fields)%2
	out := make([]interface{}, 0, n)
	for i := 0; i < n; i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		out = append(out, key, fields[i+1])
	}
	return out
}

// parseLogLevel converts string log level to a zerolog level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
