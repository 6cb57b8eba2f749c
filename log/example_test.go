package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/phrasegen/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"))
	logger.Info("generated", slog.Int("seed", 42), slog.String("text", "play music"))

	// Output:
	// level=INFO msg=generated seed=42 text=play music
}

func Example_configuration() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelDebug),
		log.WithTimeLayout("RFC3339Nano"),
		log.WithCaller(true))

	logger.Debug("debug message with caller info")
}

func Example_levels() {
	logger := log.Make(os.Stdout, log.WithLevel(log.LevelWarn), log.WithTimeLayout(""))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warning message", slog.String("key", "value"))

	// Output:
	// level=WARN msg=warning message key=value
}

func Example_prettyJSON() {
	logger := log.Make(os.Stdout, log.WithFormat(log.FormatJSON), log.WithTimeLayout(""))
	logger.Info("matched", slog.Group("bindings", slog.String("song", "sandman")))

	// Output:
	// {
	//   level: INFO,
	//   msg: matched,
	//   bindings.song: sandman
	// }
}

func Example_withAttributes() {
	logger := log.Make(os.Stdout, log.WithTimeLayout(""))
	logger = logger.With(slog.String("template", "greeting"))

	logger.Info("expanding")
	logger.Debug("not shown at info level")

	// Output:
	// level=INFO msg=expanding template=greeting
}

func Example_withContext() {
	type requestIDKey struct{}

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-789")

	logger := log.Make(os.Stdout)

	logger.InfoContext(ctx, "processing request with context")
	logger.DebugContext(ctx, "request details", slog.String("method", "POST"))
}
