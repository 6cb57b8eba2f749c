package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Logger is a leveled structured logger built on [slog.Logger] whose
// configuration can be read and rewrapped safely from many goroutines.
//
// The zero value discards everything. Packages such as lang and library hold
// a Logger by value and log through it unconditionally.
type Logger struct {
	*slog.Logger
	config
}

// ComponentKey is the attribute key added by [Logger.Named].
const ComponentKey = "component"

// callerDepth is the number of frames between runtime.Callers and the code
// that called a logging method or package function.
const callerDepth = 3

// Make returns a [Logger] writing to w with the default configuration
// modified by opts.
func Make(w io.Writer, opts ...Option) Logger {
	return build(makeConfig(w, opts...), nil)
}

// build pairs cfg with a new slog logger. The handler is derived from cfg
// unless h is given.
func build(cfg config, h slog.Handler) Logger {
	if h == nil {
		h = cfg.handler()
	}

	return Logger{config: cfg, Logger: slog.New(h)}
}

// settings returns a copy of the configuration taken under the read lock, and
// whether l was made with [Make].
func (l Logger) settings() (config, bool) {
	if l.Logger == nil || l.mutex == nil {
		return config{}, false
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.config, true
}

// Wrap returns a new [Logger] with the configuration of l modified by opts.
// Attributes added with [Logger.With] or [Logger.Named] are dropped.
func (l Logger) Wrap(opts ...Option) Logger {
	cfg, ok := l.settings()
	if !ok {
		return Make(io.Discard, opts...)
	}

	return build(cfg.clone(opts...), nil)
}

// With returns a new [Logger] adding attrs to every record.
func (l Logger) With(attrs ...slog.Attr) Logger {
	cfg, ok := l.settings()
	if !ok {
		return l
	}

	return build(cfg.clone(), l.Handler().WithAttrs(attrs))
}

// Named returns a new [Logger] tagging every record with the component that
// produced it.
func (l Logger) Named(component string) Logger {
	return l.With(slog.String(ComponentKey, component))
}

// Level returns the minimum level logged.
func (l Logger) Level() Level {
	if cfg, ok := l.settings(); ok {
		return cfg.level
	}

	return DefaultLevel
}

// Format returns the record encoding.
func (l Logger) Format() Format {
	if cfg, ok := l.settings(); ok {
		return cfg.format
	}

	return DefaultFormat
}

// Output returns the writer records are written to.
func (l Logger) Output() io.Writer {
	if cfg, ok := l.settings(); ok {
		return cfg.output
	}

	return io.Discard
}

// Enabled reports whether a record at level would be written.
func (l Logger) Enabled(ctx context.Context, level Level) bool {
	if l.Logger == nil {
		return false
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return l.Handler().Enabled(ctx, slog.Level(level))
}

// Log writes a record at level.
func (l Logger) Log(ctx context.Context, level Level, msg string, attrs ...slog.Attr) {
	l.output(ctx, callerDepth, level, msg, attrs)
}

// TraceContext logs at [LevelTrace].
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.output(ctx, callerDepth, LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug].
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.output(ctx, callerDepth, LevelDebug, msg, attrs)
}

// InfoContext logs at [LevelInfo].
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.output(ctx, callerDepth, LevelInfo, msg, attrs)
}

// WarnContext logs at [LevelWarn].
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.output(ctx, callerDepth, LevelWarn, msg, attrs)
}

// ErrorContext logs at [LevelError].
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.output(ctx, callerDepth, LevelError, msg, attrs)
}

// Trace logs at [LevelTrace] with the context from [DefaultContextProvider].
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.output(DefaultContextProvider(), callerDepth, LevelTrace, msg, attrs)
}

// Debug logs at [LevelDebug] with the context from [DefaultContextProvider].
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.output(DefaultContextProvider(), callerDepth, LevelDebug, msg, attrs)
}

// Info logs at [LevelInfo] with the context from [DefaultContextProvider].
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.output(DefaultContextProvider(), callerDepth, LevelInfo, msg, attrs)
}

// Warn logs at [LevelWarn] with the context from [DefaultContextProvider].
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.output(DefaultContextProvider(), callerDepth, LevelWarn, msg, attrs)
}

// Error logs at [LevelError] with the context from [DefaultContextProvider].
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.output(DefaultContextProvider(), callerDepth, LevelError, msg, attrs)
}

// output writes one record. depth counts the frames above runtime.Callers
// that belong to this package.
func (l Logger) output(
	ctx context.Context,
	depth int,
	level Level,
	msg string,
	attrs []slog.Attr,
) {
	if l.Logger == nil {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	mu := l.mutex
	if mu == nil {
		mu = &sync.RWMutex{}
	}

	mu.RLock()
	defer mu.RUnlock()

	h := l.Handler()
	if !h.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pcs [1]uintptr

	runtime.Callers(depth, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = h.Handle(ctx, r)
}
