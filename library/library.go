package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/phrasegen/lang"
	"github.com/ardnew/phrasegen/log"
)

// Kind distinguishes reusable subtemplates from top-level templates.
type Kind int

const (
	// KindSubtemplate is a template callable from other templates by name.
	KindSubtemplate Kind = iota

	// KindTemplate is a top-level template selected by the user.
	KindTemplate
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSubtemplate:
		return "subtemplate"

	case KindTemplate:
		return "template"

	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind parses a kind name. Both the long names and the block header
// keywords ("sub", "temp") are accepted.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sub", "subtemplate", "subtemplates":
		return KindSubtemplate, true

	case "temp", "template", "templates":
		return KindTemplate, true

	default:
		return 0, false
	}
}

// maxSuggestions bounds the names returned by [Library.Suggest].
const maxSuggestions = 3

// Library is a named collection of subtemplates and top-level templates.
//
// Library implements [lang.Registry] over its subtemplates. It is safe for
// concurrent use, but must not be modified while a generation or match call
// is reading from it.
type Library struct {
	mu        sync.RWMutex
	defs      [2]map[string]*lang.Template
	origin    [2]map[string]string
	order     [2][]string // names in first-definition order
	logger    log.Logger
	parseOpts []lang.Option
	dirs      []string
	environ   func(string) string
}

// New returns an empty library configured by opts.
func New(opts ...Option) *Library {
	l := &Library{}

	for i := range l.defs {
		l.defs[i] = make(map[string]*lang.Template)
		l.origin[i] = make(map[string]string)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

// Define adds t to the library under name, replacing any existing
// definition of the same kind.
func (l *Library) Define(kind Kind, name string, t *lang.Template) error {
	if err := checkDefinition(kind, name, t); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.define(kind, name, t, "")

	return nil
}

// definition is a parsed template waiting to be added to a library.
type definition struct {
	kind   Kind
	name   string
	tmpl   *lang.Template
	origin string
}

func checkDefinition(kind Kind, name string, t *lang.Template) error {
	switch {
	case kind != KindSubtemplate && kind != KindTemplate:
		return ErrInvalidDefinition.Wrap(fmt.Errorf("unknown kind %d", int(kind)))

	case strings.TrimSpace(name) == "":
		return ErrMissingName.With(slog.String("kind", kind.String()))

	case t == nil || len(t.Clauses) == 0:
		return ErrInvalidDefinition.Wrap(fmt.Errorf("%s %q: empty template", kind, name))
	}

	return nil
}

// define stores t. The caller must hold the write lock.
func (l *Library) define(kind Kind, name string, t *lang.Template, origin string) {
	if prev, ok := l.origin[kind][name]; ok {
		l.logger.Warn("redefined "+kind.String(),
			slog.String("name", name),
			slog.String("previous", describeOrigin(prev)),
			slog.String("origin", describeOrigin(origin)))
	} else {
		l.order[kind] = append(l.order[kind], name)
	}

	l.defs[kind][name] = t
	l.origin[kind][name] = origin
}

// defineAll checks and stores every definition, or none of them.
func (l *Library) defineAll(defs []definition) error {
	for _, d := range defs {
		if err := checkDefinition(d.kind, d.name, d.tmpl); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, d := range defs {
		l.define(d.kind, d.name, d.tmpl, d.origin)
	}

	return nil
}

func describeOrigin(origin string) string {
	if origin == "" {
		return "(defined)"
	}

	return origin
}

// Lookup implements [lang.Registry] by resolving subtemplate names.
func (l *Library) Lookup(name string) (*lang.Template, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.defs[KindSubtemplate][name]

	return t, ok
}

// Template returns the top-level template with the given name. The error
// names the closest defined templates when name is not found.
func (l *Library) Template(name string) (*lang.Template, error) {
	l.mu.RLock()
	t, ok := l.defs[KindTemplate][name]
	l.mu.RUnlock()

	if ok {
		return t, nil
	}

	err := fmt.Errorf("%q", name)
	if s := l.Suggest(KindTemplate, name); len(s) > 0 {
		err = fmt.Errorf("%q (did you mean %s?)", name, quoteJoin(s))
	}

	return nil, ErrUndefinedTemplate.Wrap(err).With(slog.String("name", name))
}

// Names returns the sorted names defined with the given kind.
func (l *Library) Names(kind Kind) []string {
	if kind != KindSubtemplate && kind != KindTemplate {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Sorted(maps.Keys(l.defs[kind]))
}

// Ordered returns the names defined with the given kind in the order they
// were first defined. A redefinition keeps the position of the name.
func (l *Library) Ordered(kind Kind) []string {
	if kind != KindSubtemplate && kind != KindTemplate {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.order[kind])
}

// Find matches input against each top-level template in definition order and
// returns the name and match of the first template that matches. The name is
// empty and the match nil when no template matches. Only WithMaxDepth and
// WithLogger in opts affect matching.
func (l *Library) Find(
	ctx context.Context,
	input string,
	opts ...lang.Option,
) (string, *lang.Match, error) {
	l.mu.RLock()
	names := slices.Clone(l.order[KindTemplate])
	tmpls := make([]*lang.Template, len(names))

	for i, name := range names {
		tmpls[i] = l.defs[KindTemplate][name]
	}
	l.mu.RUnlock()

	matcher := lang.NewMatcher(l, append([]lang.Option{lang.WithLogger(l.logger)}, opts...)...)

	for i, name := range names {
		m, err := matcher.Match(ctx, tmpls[i], input)
		if err != nil {
			if ctx.Err() != nil {
				return "", nil, context.Cause(ctx)
			}

			return "", nil, ErrInvalidDefinition.Wrap(fmt.Errorf("%s %q: %w", KindTemplate, name, err)).With(
				slog.String("kind", KindTemplate.String()),
				slog.String("name", name),
				slog.String("origin", describeOrigin(l.originOf(KindTemplate, name))),
			)
		}

		if m != nil {
			l.logger.DebugContext(ctx, "template matched",
				slog.String("name", name),
				slog.Int("tried", i+1))

			return name, m, nil
		}
	}

	l.logger.DebugContext(ctx, "no template matched",
		slog.Int("tried", len(names)))

	return "", nil, nil
}

func (l *Library) originOf(kind Kind, name string) string {
	origin, _ := l.Origin(kind, name)

	return origin
}

// Origin returns the file a definition was loaded from, or the empty string
// for definitions added with [Library.Define].
func (l *Library) Origin(kind Kind, name string) (string, bool) {
	if kind != KindSubtemplate && kind != KindTemplate {
		return "", false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	origin, ok := l.origin[kind][name]

	return origin, ok
}

// Suggest returns up to three defined names of the given kind that
// approximately match name, best match first.
func (l *Library) Suggest(kind Kind, name string) []string {
	return suggest(name, l.Names(kind))
}

// Validate reports every reference to an undefined subtemplate and every
// cycle of subtemplate references. All problems are joined into a single
// error.
func (l *Library) Validate(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var errs []error

	for _, kind := range []Kind{KindSubtemplate, KindTemplate} {
		for _, name := range slices.Sorted(maps.Keys(l.defs[kind])) {
			if err := ctx.Err(); err != nil {
				return context.Cause(ctx)
			}

			errs = append(errs, l.undefined(kind, name)...)
		}
	}

	for _, chain := range l.cycles() {
		errs = append(errs, &CycleError{Chain: chain})
	}

	if len(errs) > 0 {
		l.logger.DebugContext(ctx, "library validation failed",
			slog.Int("problems", len(errs)))
	}

	return errors.Join(errs...)
}

// undefined returns an error for each call in the named template to a
// subtemplate that is not defined. The caller must hold the read lock.
func (l *Library) undefined(kind Kind, name string) []error {
	var errs []error

	seen := make(map[string]bool)

	for s := range l.defs[kind][name].Walk() {
		if s.Kind != lang.KindSubtemplate || seen[s.Name] {
			continue
		}

		seen[s.Name] = true

		if _, ok := l.defs[KindSubtemplate][s.Name]; ok {
			continue
		}

		cause := fmt.Errorf("%s %q: %w", kind, name,
			&lang.UndefinedSubtemplateError{Name: s.Name, Pos: s.Pos})

		subs := slices.Sorted(maps.Keys(l.defs[KindSubtemplate]))
		if sug := suggest(s.Name, subs); len(sug) > 0 {
			cause = fmt.Errorf("%w (did you mean %s?)", cause, quoteJoin(sug))
		}

		errs = append(errs, ErrInvalidDefinition.Wrap(cause).With(
			slog.String("kind", kind.String()),
			slog.String("name", name),
			slog.String("reference", s.Name),
			slog.String("origin", describeOrigin(l.origin[kind][name])),
		))
	}

	return errs
}

func suggest(name string, names []string) []string {
	if name == "" {
		return nil
	}

	var out []string

	for _, m := range fuzzy.Find(name, names) {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

// cycles returns each distinct cycle in the subtemplate reference graph,
// found by depth-first search in name order. The caller must hold the read
// lock.
func (l *Library) cycles() [][]string {
	const (
		unvisited = iota
		active
		done
	)

	var (
		found [][]string
		stack []string
		state = make(map[string]int)
	)

	var visit func(name string)

	visit = func(name string) {
		state[name] = active
		stack = append(stack, name)

		for _, ref := range l.defs[KindSubtemplate][name].References() {
			if _, ok := l.defs[KindSubtemplate][ref]; !ok {
				continue
			}

			switch state[ref] {
			case unvisited:
				visit(ref)

			case active:
				start := slices.Index(stack, ref)
				chain := slices.Clone(stack[start:])
				found = append(found, append(chain, ref))
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done
	}

	for _, name := range slices.Sorted(maps.Keys(l.defs[KindSubtemplate])) {
		if state[name] == unvisited {
			visit(name)
		}
	}

	return found
}

func quoteJoin(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}

	return strings.Join(q, ", ")
}
