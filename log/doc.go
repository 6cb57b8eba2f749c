// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Time formatting, caller information, output format, and terminal styling
// are applied at logger creation time using functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("generated", slog.Int("seed", 42))
//	logger.Error("failed to load library", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [Debug], ...) write through a default
// logger that writes to [os.Stderr]. Use [Config] to reconfigure it and
// [Default] to hand it to other packages.
//
// # Context-Aware Logging
//
// Each level has a context-aware and a context-unaware variant. The
// context-unaware variants use [DefaultContextProvider], which returns
// [context.TODO] by default.
//
// # Levels
//
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn], and [LevelError].
// Messages below the configured level are discarded.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON]. With [WithPretty] enabled
// (default), text output is unquoted and JSON output is one field per line.
// Both are colorized when the output is a terminal and plain otherwise.
// Groups are flattened into dotted keys.
package log
