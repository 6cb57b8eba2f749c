package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/ardnew/phrasegen/lang"
)

// Format identifies the encoding of a library file.
type Format int

const (
	// FormatBlock is the "% sub NAME ... % end" block format.
	FormatBlock Format = iota

	// FormatTOML is a TOML document with subtemplates and templates tables.
	FormatTOML

	// FormatYAML is a YAML document with subtemplates and templates maps.
	FormatYAML
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatBlock:
		return "block"

	case FormatTOML:
		return "toml"

	case FormatYAML:
		return "yaml"

	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block", "phr", "txt":
		return FormatBlock, true

	case "toml":
		return FormatTOML, true

	case "yaml", "yml":
		return FormatYAML, true

	default:
		return 0, false
	}
}

// FormatOf returns the format implied by the extension of path. Unknown
// extensions use the block format.
func FormatOf(path string) Format {
	f, ok := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if !ok {
		return FormatBlock
	}

	return f
}

// manifest is the document shape of TOML libraries. TOML tables are
// unordered, so their definitions are added in name order.
type manifest struct {
	Subtemplates map[string]string `toml:"subtemplates"`
	Templates    map[string]string `toml:"templates"`
}

func (m manifest) sections() []section {
	sorted := func(kind Kind, sources map[string]string) section {
		sec := section{kind: kind}
		for _, name := range slices.Sorted(maps.Keys(sources)) {
			sec.entries = append(sec.entries, entry{name: name, source: sources[name]})
		}

		return sec
	}

	return []section{
		sorted(KindSubtemplate, m.Subtemplates),
		sorted(KindTemplate, m.Templates),
	}
}

// yamlManifest is the document shape of YAML libraries. Definitions are
// added in document order.
type yamlManifest struct {
	Subtemplates yaml.MapSlice `yaml:"subtemplates"`
	Templates    yaml.MapSlice `yaml:"templates"`
}

func (m yamlManifest) sections() ([]section, error) {
	out := make([]section, 0, 2)

	for _, sec := range []struct {
		kind  Kind
		items yaml.MapSlice
	}{
		{KindSubtemplate, m.Subtemplates},
		{KindTemplate, m.Templates},
	} {
		s := section{kind: sec.kind}

		for _, item := range sec.items {
			name := fmt.Sprint(item.Key)

			switch v := item.Value.(type) {
			case nil:
				s.entries = append(s.entries, entry{name: name})

			case string:
				s.entries = append(s.entries, entry{name: name, source: v})

			case []any, map[string]any, yaml.MapSlice:
				return nil, ErrInvalidDefinition.Wrap(
					fmt.Errorf("%s %q: source must be a string", sec.kind, name),
				).With(
					slog.String("kind", sec.kind.String()),
					slog.String("name", name),
				)

			default:
				s.entries = append(s.entries, entry{name: name, source: fmt.Sprint(v)})
			}
		}

		out = append(out, s)
	}

	return out, nil
}

// section lists the sources of one kind in the order they are defined.
type section struct {
	kind    Kind
	entries []entry
}

type entry struct {
	name   string
	source string
}

// Load resolves path with [Library.Resolve] and adds every definition in the
// file. The format is chosen by the file extension.
//
// Either every definition in the file is added or, on error, none is.
// Definitions replace earlier ones with the same kind and name.
func (l *Library) Load(ctx context.Context, path string) error {
	resolved, err := l.Resolve(path)
	if err != nil {
		return err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return ErrReadLibrary.Wrap(err).With(slog.String("path", resolved))
	}
	defer f.Close()

	return l.load(ctx, f, FormatOf(resolved), resolved)
}

// LoadReader adds every definition read from r in the given format.
func (l *Library) LoadReader(ctx context.Context, r io.Reader, format Format) error {
	return l.load(ctx, r, format, "")
}

func (l *Library) load(
	ctx context.Context,
	r io.Reader,
	format Format,
	origin string,
) error {
	var (
		defs []definition
		err  error
	)

	switch format {
	case FormatBlock:
		defs, err = l.loadBlocks(ctx, r, origin)

	case FormatTOML:
		var m manifest

		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()

		if err = dec.Decode(&m); err == nil {
			defs, err = l.loadSections(ctx, m.sections(), origin)
		}

	case FormatYAML:
		var (
			m        yamlManifest
			sections []section
		)

		err = yaml.NewDecoder(r, yaml.DisallowUnknownField()).DecodeContext(ctx, &m)
		if errors.Is(err, io.EOF) {
			err = nil
		}

		if err == nil {
			sections, err = m.sections()
		}

		if err == nil {
			defs, err = l.loadSections(ctx, sections, origin)
		}

	default:
		return ErrUnknownFormat.With(slog.Int("format", int(format)))
	}

	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			err = ErrReadLibrary.Wrap(err)
		}

		return withOrigin(err, origin, format)
	}

	if err := l.defineAll(defs); err != nil {
		return withOrigin(err, origin, format)
	}

	l.logger.DebugContext(ctx, "loaded library",
		slog.String("origin", describeOrigin(origin)),
		slog.String("format", format.String()),
		slog.Int("definitions", len(defs)))

	return nil
}

func withOrigin(err error, origin string, format Format) error {
	var e *Error
	if !errors.As(err, &e) || origin == "" {
		return err
	}

	return e.With(
		slog.String("origin", origin),
		slog.String("format", format.String()),
	)
}

func (l *Library) loadBlocks(
	ctx context.Context,
	r io.Reader,
	origin string,
) ([]definition, error) {
	blocks, err := scanBlocks(ctx, r)
	if err != nil {
		return nil, err
	}

	defs := make([]definition, 0, len(blocks))

	for _, b := range blocks {
		t, err := l.parse(ctx, b.kind, b.name, b.body, b.line)
		if err != nil {
			return nil, err
		}

		defs = append(defs, definition{
			kind:   b.kind,
			name:   b.name,
			tmpl:   t,
			origin: origin,
		})
	}

	return defs, nil
}

func (l *Library) loadSections(
	ctx context.Context,
	sections []section,
	origin string,
) ([]definition, error) {
	var defs []definition

	for _, sec := range sections {
		for _, e := range sec.entries {
			t, err := l.parse(ctx, sec.kind, e.name, e.source, 0)
			if err != nil {
				return nil, err
			}

			defs = append(defs, definition{
				kind:   sec.kind,
				name:   e.name,
				tmpl:   t,
				origin: origin,
			})
		}
	}

	return defs, nil
}

// parse parses the source of one definition. A non-zero line is the line
// number of the first source line in its file, used to report syntax errors
// at file positions.
func (l *Library) parse(
	ctx context.Context,
	kind Kind,
	name string,
	source string,
	line int,
) (*lang.Template, error) {
	t, err := lang.ParseReader(ctx, strings.NewReader(source), l.parseOpts...)
	if err == nil {
		return t, nil
	}

	e := ErrInvalidDefinition.Wrap(fmt.Errorf("%s %q: %w", kind, name, err)).With(
		slog.String("kind", kind.String()),
		slog.String("name", name),
	)

	var se *lang.SyntaxError
	if errors.As(err, &se) && line > 0 {
		e = e.With(slog.Int("line", line+se.Pos.Line-1))
	}

	return nil, e
}
