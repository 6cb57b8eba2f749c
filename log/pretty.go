package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to
// a renderer for the handler's output, so color is dropped automatically when
// the output is not a terminal.
type palette struct {
	key      lipgloss.Style
	str      lipgloss.Style
	num      lipgloss.Style
	yes      lipgloss.Style
	no       lipgloss.Style
	duration lipgloss.Style
	time     lipgloss.Style
	null     lipgloss.Style
	err      lipgloss.Style
	msg      lipgloss.Style

	trace  lipgloss.Style
	debug  lipgloss.Style
	info   lipgloss.Style
	warn   lipgloss.Style
	severe lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	return palette{
		key:      r.NewStyle().Foreground(lipgloss.Color("8")),
		str:      r.NewStyle().Foreground(lipgloss.Color("6")),
		num:      r.NewStyle().Foreground(lipgloss.Color("3")),
		yes:      r.NewStyle().Foreground(lipgloss.Color("2")),
		no:       r.NewStyle().Foreground(lipgloss.Color("1")),
		duration: r.NewStyle().Foreground(lipgloss.Color("5")),
		time:     r.NewStyle().Foreground(lipgloss.Color("4")),
		null:     r.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
		err:      r.NewStyle().Foreground(lipgloss.Color("9")),
		msg:      r.NewStyle().Bold(true),

		trace:  r.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),
		debug:  r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		info:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		severe: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.severe
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// value renders v styled by its kind.
func (p palette) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.duration.Render(v.Duration().String())

	case slog.KindTime:
		return p.time.Render(v.Time().Format(time.RFC3339))

	default:
		switch x := v.Any().(type) {
		case nil:
			return p.null.Render("null")

		case error:
			return p.err.Render(x.Error())

		default:
			return p.str.Render(fmt.Sprint(x))
		}
	}
}

// prettyBase holds the state shared by the pretty handlers.
type prettyBase struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  palette
	attrs  []slog.Attr // from WithAttrs, already qualified by group
	prefix string      // group qualifier for subsequent attributes
}

func newPrettyBase(w io.Writer, opts *slog.HandlerOptions) prettyBase {
	return prettyBase{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
	}
}

func (b *prettyBase) enabled(level slog.Level) bool {
	minLevel := slog.LevelInfo
	if b.opts.Level != nil {
		minLevel = b.opts.Level.Level()
	}

	return level >= minLevel
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	b.attrs = slices.Clip(b.attrs)

	for _, a := range attrs {
		b.attrs = flatten(b.attrs, b.prefix, a)
	}

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name != "" {
		b.prefix += name + "."
	}

	return b
}

// fields returns the built-in fields of r followed by every attribute,
// resolved and flattened into dotted keys.
func (b *prettyBase) fields(r slog.Record) []slog.Attr {
	out := make([]slog.Attr, 0, 4+len(b.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		out = b.builtin(out, slog.Time(slog.TimeKey, r.Time))
	}

	out = b.builtin(out, slog.Any(slog.LevelKey, r.Level))

	if b.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			out = append(out, slog.String(slog.SourceKey,
				filepath.Base(src.File)+":"+strconv.Itoa(src.Line)))
		}
	}

	out = append(out, slog.String(slog.MessageKey, r.Message))
	out = append(out, b.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		out = flatten(out, b.prefix, a)

		return true
	})

	return out
}

func (b *prettyBase) builtin(out []slog.Attr, a slog.Attr) []slog.Attr {
	if b.opts.ReplaceAttr != nil {
		a = b.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return out
	}

	return append(out, a)
}

// render styles the value of a, treating the level and message specially.
func (b *prettyBase) render(a slog.Attr, level slog.Level) string {
	switch a.Key {
	case slog.LevelKey:
		return b.style.level(level).Render(a.Value.String())

	case slog.MessageKey:
		return b.style.msg.Render(a.Value.String())

	default:
		return b.style.value(a.Value)
	}
}

func (b *prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(buf.Bytes())

	return err
}

// flatten appends a to out with LogValuers resolved and groups expanded into
// dotted keys. Empty attributes are dropped.
func flatten(out []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return out
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			out = flatten(out, p, g)
		}

		return out
	}

	a.Key = prefix + a.Key

	return append(out, a)
}

// prettyTextHandler implements a colorized text handler for log messages.
type prettyTextHandler struct {
	prettyBase
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyBase(w, opts)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for _, a := range h.fields(r) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.render(a, r.Level))
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler implements a pretty-printed JSON-like handler for log
// messages: one field per line, unquoted, indented.
type prettyJSONHandler struct {
	prettyBase
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyBase(w, opts)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{\n")

	for i, a := range h.fields(r) {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteString(": ")
		buf.WriteString(h.render(a, r.Level))
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
