// Package logging configures the process-wide slog logger and carries a
// corpus load id through contexts, so that every record of one load can be
// correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/FocuswithJustin/treebank/core/errors"
)

type contextKey struct{}

var loadIDKey contextKey

var defaultLogger *slog.Logger

func init() {
	// stderr, so stdout stays free for converted trees
	InitLogger(LevelInfo, FormatText)
}

// Level is the minimal severity that is logged.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	levelNames = []string{"debug", "info", "warn", "error"}
	slogLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
)

// ParseLevel parses a level name: debug, info, warn or error.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelInfo, errors.NewConfig("log level", s, levelNames...)
}

func (l Level) slog() slog.Level {
	if l < 0 || int(l) >= len(slogLevels) {
		return slog.LevelInfo
	}
	return slogLevels[l]
}

// Format selects the record encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

var formatNames = []string{"json", "text"}

// ParseFormat parses a format name: json or text.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return FormatText, errors.NewConfig("log format", s, formatNames...)
}

// InitLogger replaces the default logger with one writing to stderr.
func InitLogger(level Level, format Format) {
	InitLoggerTo(os.Stderr, level, format)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(w io.Writer, level Level, format Format) {
	opts := &slog.HandlerOptions{
		Level: level.slog(),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// WithLoadID returns a context carrying a corpus load id.
func WithLoadID(ctx context.Context, loadID string) context.Context {
	return context.WithValue(ctx, loadIDKey, loadID)
}

// LoadID returns the load id carried by ctx, or "".
func LoadID(ctx context.Context) string {
	id, _ := ctx.Value(loadIDKey).(string)
	return id
}

// LoggerFromContext returns the default logger, tagged with the load id of
// ctx if there is one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if id := LoadID(ctx); id != "" {
		return defaultLogger.With("load_id", id)
	}
	return defaultLogger
}

// DebugContext logs at debug level with the load id of ctx.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).DebugContext(ctx, msg, args...)
}

// InfoContext logs at info level with the load id of ctx.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).InfoContext(ctx, msg, args...)
}

// WarnContext logs at warn level with the load id of ctx.
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).WarnContext(ctx, msg, args...)
}

// CorpusOpen records that a corpus file is about to be read.
func CorpusOpen(ctx context.Context, path string, args ...any) {
	DebugContext(ctx, "corpus_open", append([]any{"path", path}, args...)...)
}

// CorpusDone records the end of a corpus load.
func CorpusDone(ctx context.Context, files, items int, elapsed time.Duration, args ...any) {
	InfoContext(ctx, "corpus_done",
		append([]any{"files", files, "items", items, "duration_ms", elapsed.Milliseconds()}, args...)...)
}

// BlockError records a block that could not be read.
func BlockError(ctx context.Context, block string, err error, args ...any) {
	LoggerFromContext(ctx).ErrorContext(ctx, "block_error",
		append([]any{"block", block, "error", err.Error()}, args...)...)
}
