package logger

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

// current is never nil; Init swaps it atomically.
var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(newLogger("development", os.Stdout))
}

// Init configures the global logger.
// env: "development" gives text output at debug level, anything else JSON at info.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter is Init with an explicit destination, used by tests.
func InitWithWriter(env string, w io.Writer) {
	log := newLogger(env, w)
	current.Store(log)
	slog.SetDefault(log)
}

func newLogger(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func GetLogger() *slog.Logger {
	return current.Load()
}

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal logs and terminates the process.
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With returns a child logger, e.g. logger.With("post_id", id).Info("post deleted").
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// HTTPLog logs a finished HTTP request.
func HTTPLog(method, path string, status int, duration time.Duration, size int) {
	GetLogger().Info("http request",
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"size_bytes", size,
	)
}

// DBLog logs a database statement; failures at error level, the rest at debug.
func DBLog(operation, query string, duration time.Duration, err error) {
	fields := []any{
		"operation", operation,
		"query", query,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("database operation failed", fields...)
	} else {
		GetLogger().Debug("database operation", fields...)
	}
}
