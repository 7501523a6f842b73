package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level aliases zerolog's level so callers don't import zerolog directly.
type Level = zerolog.Level

const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

// Logger is a structured logger that accepts alternating key/value pairs.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger builds the application logger. Development mode writes
// human-readable console output at debug level; otherwise JSON at info.
func NewLogger(isDevelopment bool) *Logger {
	if isDevelopment {
		return New(os.Stdout, "debug", true)
	}
	return New(os.Stdout, "info", false)
}

// New builds a logger writing to out at the given level.
func New(out io.Writer, level string, pretty bool) *Logger {
	if out == nil {
		out = os.Stdout
	}
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel converts a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// WithFields returns a child logger carrying the given fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

func (l *Logger) Debug(msg string, args ...any) { l.write(l.zl.Debug(), msg, args) }

func (l *Logger) Info(msg string, args ...any) { l.write(l.zl.Info(), msg, args) }

func (l *Logger) Warn(msg string, args ...any) { l.write(l.zl.Warn(), msg, args) }

func (l *Logger) Error(msg string, args ...any) { l.write(l.zl.Error(), msg, args) }

// Log writes msg at the given level.
func (l *Logger) Log(_ context.Context, level Level, msg string, args ...any) {
	l.write(l.zl.WithLevel(level), msg, args)
}

func (l *Logger) write(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		if i+1 >= len(args) {
			ev = ev.Str("!BADKEY", key)
			break
		}
		switch v := args[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case string:
			ev = ev.Str(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
