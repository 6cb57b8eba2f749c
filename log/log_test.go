package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level Info, got %v", logger.Level())
	}
	if logger.config.caller {
		t.Error("expected caller disabled by default")
	}
	if logger.Format() != FormatText {
		t.Errorf("expected default format text, got %v", logger.Format())
	}
	if logger.Output() != &buf {
		t.Error("expected output to be the given writer")
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelDebug))

	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug message not logged after setting level to Debug")
	}

	buf.Reset()
	logger2 := Make(&buf, WithLevel(LevelError))
	logger2.Info("info message")
	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger2.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Make_WithTimeLayout_SetsLayout(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		contains string
	}{
		{"rfc3339 named", "RFC3339", "T"},
		{"rfc3339 nano named", "RFC3339Nano", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Make(&buf, WithTimeLayout(tt.format), WithPretty(false))
			logger.Info("test")

			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf(
					"expected time format to contain %q, got: %s",
					tt.contains,
					output,
				)
			}
		})
	}
}

func TestLogger_Make_WithCaller_IncludesSource(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		logger := Make(&buf, WithCaller(true), WithPretty(pretty))
		logger.Info("test message")

		if !strings.Contains(buf.String(), "source") {
			t.Errorf("pretty=%v: source not included when enabled: %s", pretty, buf.String())
		}

		buf.Reset()
		logger2 := Make(&buf, WithCaller(false), WithPretty(pretty))
		logger2.Info("test message")

		if strings.Contains(buf.String(), "source") {
			t.Errorf("pretty=%v: source included when disabled: %s", pretty, buf.String())
		}
	}
}

func TestLogger_Make_WithFormat_SetsOutputFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))
		logger.Info("test message", slog.String("key", "value"))

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}
		if result["msg"] != "test message" {
			t.Errorf("expected msg=test message, got %v", result["msg"])
		}
		if result["key"] != "value" {
			t.Errorf("expected key=value, got %v", result["key"])
		}
		if result["level"] != "INFO" {
			t.Errorf("expected level=INFO, got %v", result["level"])
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Make(&buf, WithFormat(FormatText), WithPretty(false))
		logger.Info("test message", slog.String("key", "value"))

		output := buf.String()
		if !strings.Contains(output, "test message") {
			t.Error("message not found in text output")
		}
		if !strings.Contains(output, "key=value") {
			t.Error("key=value not found in text output")
		}
	})
}

func TestLogger_LogMethods_RespectLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(Logger, string, ...slog.Attr)
		minLevel Level
		logged   bool
	}{
		{"trace at trace", Logger.Trace, LevelTrace, true},
		{"trace at debug", Logger.Trace, LevelDebug, false},
		{"debug at debug", Logger.Debug, LevelDebug, true},
		{"debug at info", Logger.Debug, LevelInfo, false},
		{"info at info", Logger.Info, LevelInfo, true},
		{"info at warn", Logger.Info, LevelWarn, false},
		{"warn at warn", Logger.Warn, LevelWarn, true},
		{"warn at error", Logger.Warn, LevelError, false},
		{"error at error", Logger.Error, LevelError, true},
		{"error at debug", Logger.Error, LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Make(&buf, WithLevel(tt.minLevel))
			tt.logFunc(logger, "test message")

			hasOutput := buf.Len() > 0
			if hasOutput != tt.logged {
				t.Errorf(
					"expected logged=%v, got output length=%d",
					tt.logged,
					buf.Len(),
				)
			}
		})
	}
}

func TestLogger_AllLevels_RenderNames(t *testing.T) {
	tests := []struct {
		logFunc func(Logger, string, ...slog.Attr)
		level   string
	}{
		{Logger.Trace, "TRACE"},
		{Logger.Debug, "DEBUG"},
		{Logger.Info, "INFO"},
		{Logger.Warn, "WARN"},
		{Logger.Error, "ERROR"},
	}

	for _, tt := range tests {
		for _, pretty := range []bool{false, true} {
			t.Run(tt.level, func(t *testing.T) {
				var buf bytes.Buffer
				logger := Make(&buf, WithLevel(LevelTrace), WithPretty(pretty))

				tt.logFunc(logger, "test message")

				output := buf.String()
				if !strings.Contains(output, "test message") {
					t.Errorf("expected %s message to be logged", tt.level)
				}
				if !strings.Contains(output, "level="+tt.level) {
					t.Errorf("expected output to contain level=%s, got: %s", tt.level, output)
				}
			})
		}
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		logger := Make(&buf, WithPretty(pretty))

		var wg sync.WaitGroup
		for i := range 100 {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				logger.Info("concurrent message", slog.Int("id", id))
			}(i)
		}
		wg.Wait()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 100 {
			t.Errorf("pretty=%v: expected 100 log lines, got %d", pretty, len(lines))
		}
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))

	loggerWith := logger.With(slog.String("key", "value"))
	loggerWith.Info("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}

	if val, ok := entry["key"]; !ok || val != "value" {
		t.Errorf("expected key=value in log entry, got %v", val)
	}
}

func TestLogger_Pretty_KeepsAttributesAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"))

	child := logger.With(slog.String("component", "gen"))
	child.Logger = child.WithGroup("req")
	child.Info("handled", slog.Int("seed", 7), slog.Group("out", slog.Int("len", 3)))

	output := buf.String()
	for _, want := range []string{
		"level=INFO", "msg=handled", "component=gen", "req.seed=7", "req.out.len=3",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}

	if strings.Contains(output, "time=") {
		t.Errorf("expected no time field, got: %s", output)
	}
}

type secretValue struct{}

func (secretValue) LogValue() slog.Value {
	return slog.GroupValue(slog.String("kind", "hidden"), slog.Int("n", 2))
}

func TestLogger_Pretty_ResolvesLogValuers(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON} {
		var buf bytes.Buffer
		logger := Make(&buf, WithFormat(format), WithTimeLayout("none"))

		logger.Warn("resolved",
			slog.Any("value", secretValue{}),
			slog.Any("error", errors.New("boom")),
			slog.Bool("ok", false))

		output := buf.String()
		for _, want := range []string{"value.kind", "hidden", "value.n", "boom", "false"} {
			if !strings.Contains(output, want) {
				t.Errorf("%v: expected %q in output: %s", format, want, output)
			}
		}
	}
}

func TestLogger_PrettyJSON_Layout(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none"))

	logger.Info("hello", slog.String("k", "v"))

	want := "{\n  level: INFO,\n  msg: hello,\n  k: v\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var l Logger
	// Should not panic
	l.Trace("test")
	l.Debug("test")
	l.Info("test")
	l.Warn("test")
	l.Error("test")

	l2 := l.With(slog.String("key", "value"))
	if l2.Logger != nil {
		t.Error("expected nil logger from zero value With")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("expected defaults from zero value accessors")
	}
}

func TestLogger_Wrap_OverridesConfiguration(t *testing.T) {
	var buf bytes.Buffer
	base := Make(&buf, WithLevel(LevelError), WithPretty(false))

	wrapped := base.Wrap(WithLevel(LevelDebug))
	wrapped.Debug("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Error("expected wrapped logger to use overridden level")
	}

	if base.Level() != LevelError {
		t.Error("expected Wrap to leave the original logger unchanged")
	}
}

func TestLogger_EdgeCases(t *testing.T) {
	var buf bytes.Buffer
	l := Make(&buf, WithTimeLayout("none"), WithPretty(false), WithFormat(FormatJSON))
	l.Info("test")
	output := buf.String()
	// With empty time layout, the time field should be omitted by ReplaceAttr
	if strings.Contains(output, `"time"`) {
		t.Errorf("expected no time field, got: %s", output)
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := Make(&buf)

	for i := 0; b.Loop(); i++ {
		logger.Info("benchmark message", slog.Int("iteration", i))
	}
}

func BenchmarkLogger_Info_WithAttributes(b *testing.B) {
	var buf bytes.Buffer
	logger := Make(&buf).With(slog.String("component", "test"))

	for i := 0; b.Loop(); i++ {
		logger.Info("benchmark message", slog.Int("iteration", i))
	}
}

func TestLogger_Named_TagsComponent(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false), WithFormat(FormatJSON)).Named("library")
	logger.Info("loaded")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record: %v\n%s", err, buf.String())
	}

	if rec[ComponentKey] != "library" {
		t.Errorf("%s = %v, want library", ComponentKey, rec[ComponentKey])
	}

	var zero Logger
	if zero.Named("lang").Logger != nil {
		t.Error("expected Named on zero value to stay silent")
	}
}

func TestLogger_Enabled(t *testing.T) {
	logger := Make(io.Discard, WithLevel(LevelDebug))

	tests := []struct {
		level Level
		want  bool
	}{
		{LevelTrace, false},
		{LevelDebug, true},
		{LevelError, true},
	}

	for _, tt := range tests {
		if got := logger.Enabled(t.Context(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}

	var zero Logger
	if zero.Enabled(t.Context(), LevelError) {
		t.Error("expected zero value logger to be disabled")
	}
}

func TestLogger_Log_ReportsCaller(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false), WithCaller(true), WithFormat(FormatJSON))

	for name, fn := range map[string]func(){
		"method":  func() { logger.Log(t.Context(), LevelWarn, "here") },
		"context": func() { logger.WarnContext(t.Context(), "here") },
		"plain":   func() { logger.Warn("here") },
	} {
		buf.Reset()
		fn()

		if !strings.Contains(buf.String(), "log_test.go") {
			t.Errorf("%s: source is not this file: %s", name, buf.String())
		}
	}
}
