package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider returns the default context used by context-unaware
// logging functions.
var DefaultContextProvider = context.TODO

var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Config updates the default logger with the given options.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// Default returns the default logger, for passing to packages that accept a
// [Logger].
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// Log writes a record at level using the default logger.
func Log(ctx context.Context, level Level, msg string, attrs ...slog.Attr) {
	Default().output(ctx, callerDepth, level, msg, attrs)
}

// TraceContext logs at [LevelTrace] using the default logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().output(ctx, callerDepth, LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug] using the default logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().output(ctx, callerDepth, LevelDebug, msg, attrs)
}

// InfoContext logs at [LevelInfo] using the default logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().output(ctx, callerDepth, LevelInfo, msg, attrs)
}

// WarnContext logs at [LevelWarn] using the default logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().output(ctx, callerDepth, LevelWarn, msg, attrs)
}

// ErrorContext logs at [LevelError] using the default logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().output(ctx, callerDepth, LevelError, msg, attrs)
}

// Trace logs at [LevelTrace] using the default logger.
func Trace(msg string, attrs ...slog.Attr) {
	Default().output(DefaultContextProvider(), callerDepth, LevelTrace, msg, attrs)
}

// Debug logs at [LevelDebug] using the default logger.
func Debug(msg string, attrs ...slog.Attr) {
	Default().output(DefaultContextProvider(), callerDepth, LevelDebug, msg, attrs)
}

// Info logs at [LevelInfo] using the default logger.
func Info(msg string, attrs ...slog.Attr) {
	Default().output(DefaultContextProvider(), callerDepth, LevelInfo, msg, attrs)
}

// Warn logs at [LevelWarn] using the default logger.
func Warn(msg string, attrs ...slog.Attr) {
	Default().output(DefaultContextProvider(), callerDepth, LevelWarn, msg, attrs)
}

// Error logs at [LevelError] using the default logger.
func Error(msg string, attrs ...slog.Attr) {
	Default().output(DefaultContextProvider(), callerDepth, LevelError, msg, attrs)
}

// Named returns the default logger tagged with component.
func Named(component string) Logger {
	return Default().Named(component)
}

// With returns a new [Logger] that includes the given attributes in each log
// message using the default logger.
func With(attrs ...slog.Attr) Logger {
	return Default().With(attrs...)
}
