// Package logger wraps slog with registry-specific fields.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/viant/annreg/config"
)

// Logger wraps slog.Logger with consistent field names for registry events.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler, or a text handler on
// stderr at info level when handler is nil.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON records to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes text records to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// FromConfig builds a Logger writing to w as configured.
func FromConfig(cfg config.LogConfig, w io.Writer) *Logger {
	level := ParseLevel(cfg.Level)
	if strings.EqualFold(cfg.Format, "json") {
		return NewJSONLogger(w, level)
	}
	return NewTextLogger(w, level)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithIndex tags records with an index name. An empty name leaves l as is.
func (l *Logger) WithIndex(name string) *Logger {
	if name == "" {
		return l
	}
	return &Logger{Logger: l.Logger.With("index", name)}
}

// LogBuild logs a build.
func (l *Logger) LogBuild(ctx context.Context, name string, built int, err error) {
	il := l.WithIndex(name)
	if err != nil {
		il.ErrorContext(ctx, "build failed", "error", err)
		return
	}
	il.DebugContext(ctx, "build completed", "built", built)
}

// LogSave logs a save of both streams.
func (l *Logger) LogSave(ctx context.Context, name, indexLocation, elementsLocation string, err error) {
	il := l.WithIndex(name)
	if err != nil {
		il.ErrorContext(ctx, "save failed",
			"index_location", indexLocation,
			"elements_location", elementsLocation,
			"error", err,
		)
		return
	}
	il.InfoContext(ctx, "index saved",
		"index_location", indexLocation,
		"elements_location", elementsLocation,
	)
}

// LogLoad logs a load of both streams.
func (l *Logger) LogLoad(ctx context.Context, name, indexLocation, elementsLocation string, elements int, err error) {
	il := l.WithIndex(name)
	if err != nil {
		il.ErrorContext(ctx, "load failed",
			"index_location", indexLocation,
			"elements_location", elementsLocation,
			"error", err,
		)
		return
	}
	il.InfoContext(ctx, "index loaded",
		"index_location", indexLocation,
		"elements_location", elementsLocation,
		"elements", elements,
	)
}

// LogFault logs a recovered panic.
func (l *Logger) LogFault(ctx context.Context, op, name string, recovered any) {
	l.WithIndex(name).ErrorContext(ctx, "recovered panic",
		"op", op,
		"panic", recovered,
	)
}

// LogRejected logs a call refused at the foreign boundary.
func (l *Logger) LogRejected(ctx context.Context, op, kind string, err error) {
	l.WarnContext(ctx, "call rejected",
		"op", op,
		"kind", kind,
		"error", err,
	)
}
