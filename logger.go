package school

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Fields map[string]any

type loggerWithFields interface {
	WithFields(Fields) Logger
}

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// LogConfig configures the zerolog backed logger.
type LogConfig struct {
	Level  string
	Pretty bool
	Output io.Writer
}

type zeroLogger struct {
	zl zerolog.Logger
}

// NewLogger returns a Logger writing structured entries through zerolog.
func NewLogger(cfg LogConfig) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return &zeroLogger{
		zl: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// NopLogger discards every entry.
func NopLogger() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

func (l *zeroLogger) Debug(format string, args ...any) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

func (l *zeroLogger) Info(format string, args ...any) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

func (l *zeroLogger) Error(format string, args ...any) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

func (l *zeroLogger) WithFields(fields Fields) Logger {
	if len(fields) == 0 {
		return l
	}
	return &zeroLogger{zl: l.zl.With().Fields(map[string]any(fields)).Logger()}
}

// WithFields attaches fields when the logger supports it and returns the
// logger unchanged otherwise.
func WithFields(logger Logger, fields Fields) Logger {
	if logger == nil {
		return NopLogger()
	}
	if lf, ok := logger.(loggerWithFields); ok {
		return lf.WithFields(fields)
	}
	return logger
}
