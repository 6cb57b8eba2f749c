package lang

import (
	"context"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ardnew/phrasegen/log"
)

// Matcher recognizes text produced by templates. It is the inverse of
// generation: a template is compiled to an anchored regular expression, and
// the text each variable binding could have captured is recovered from a
// match.
//
// Literals are compared case-insensitively using Unicode case folding, and
// any amount of whitespace is accepted between adjacent symbols.
type Matcher struct {
	reg      Registry
	maxDepth int
	logger   log.Logger
}

// Match is the result of a successful match.
type Match struct {
	Input    string
	bindings map[string]string
}

// Bindings returns the values captured for each variable binding, with
// surrounding whitespace trimmed. The values are case folded. The returned
// map may be passed to WithBindings to replay the captures.
func (m *Match) Bindings() map[string]string {
	if m == nil {
		return nil
	}

	return maps.Clone(m.bindings)
}

// NewMatcher returns a matcher resolving subtemplate calls through reg.
// Only WithMaxDepth and WithLogger affect matching.
func NewMatcher(reg Registry, opts ...Option) *Matcher {
	o := makeOptions(opts...)

	return &Matcher{reg: reg, maxDepth: o.maxDepth, logger: o.logger}
}

// Regexp compiles t to an anchored regular expression. Variable bindings
// become capture groups named g0, g1, and so on; use Match to recover
// bindings by identifier.
func (m *Matcher) Regexp(ctx context.Context, t *Template) (*regexp.Regexp, error) {
	re, _, err := m.compile(ctx, t)

	return re, err
}

// Match reports whether input could have been produced by t. It returns a nil
// Match and nil error when the input does not match.
func (m *Matcher) Match(ctx context.Context, t *Template, input string) (*Match, error) {
	re, idents, err := m.compile(ctx, t)
	if err != nil {
		return nil, err
	}

	folded := cases.Fold().String(input)

	sub := re.FindStringSubmatchIndex(folded)
	if sub == nil {
		m.logger.DebugContext(ctx, "no match", slog.String("pattern", re.String()))

		return nil, nil
	}

	bindings := make(map[string]string, len(idents))

	for i, ident := range idents {
		lo, hi := sub[2*(i+1)], sub[2*(i+1)+1]
		if lo < 0 {
			continue
		}

		// The first participating occurrence of an identifier wins.
		if _, ok := bindings[ident]; !ok {
			bindings[ident] = strings.TrimSpace(folded[lo:hi])
		}
	}

	m.logger.DebugContext(ctx, "match",
		slog.Int("binding_count", len(bindings)))

	return &Match{Input: input, bindings: bindings}, nil
}

// compile translates t and returns the regular expression with the
// identifier of each capture group in group order.
func (m *Matcher) compile(ctx context.Context, t *Template) (*regexp.Regexp, []string, error) {
	if t == nil || len(t.Clauses) == 0 {
		return nil, nil, ErrInvalidOption.With(slog.String("option", "template"))
	}

	c := &compiler{
		ctx:      ctx,
		reg:      m.reg,
		maxDepth: m.maxDepth,
		fold:     cases.Fold(),
	}

	var sb strings.Builder

	// Alternation binds loosest, so multiple clauses need a group for the
	// anchors to apply to each of them.
	alt := len(t.Clauses) > 1

	sb.WriteByte('^')

	if alt {
		sb.WriteString(`(?:`)
	}

	err := c.template(&sb, t, 0)
	if err != nil {
		return nil, nil, err
	}

	if alt {
		sb.WriteByte(')')
	}

	sb.WriteByte('$')

	pattern := sb.String()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, nil, ErrInvalidPattern.Wrap(err).
			With(slog.String("pattern", pattern))
	}

	m.logger.TraceContext(ctx, "pattern compiled",
		slog.String("pattern", pattern),
		slog.Int("capture_count", len(c.idents)))

	return re, c.idents, nil
}

type compiler struct {
	ctx      context.Context
	reg      Registry
	maxDepth int
	fold     cases.Caser
	idents   []string
	chain    []string
}

func (c *compiler) template(sb *strings.Builder, t *Template, depth int) error {
	err := c.ctx.Err()
	if err != nil {
		return context.Cause(c.ctx)
	}

	if t == nil || len(t.Clauses) == 0 {
		return ErrInvalidOption.With(
			slog.String("option", "template"),
			slog.Any("chain", slices.Clone(c.chain)))
	}

	for i, cl := range t.Clauses {
		if i > 0 {
			sb.WriteByte('|')
		}

		for j, s := range cl.Symbols {
			if j > 0 {
				sb.WriteString(`\s*`)
			}

			err := c.symbol(sb, s, depth)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *compiler) symbol(sb *strings.Builder, s *Symbol, depth int) error {
	switch s.Kind {
	case KindLiteral:
		lit := regexp.QuoteMeta(c.fold.String(s.Text))
		if s.Optional {
			sb.WriteString(`(?:` + lit + `)?`)
		} else {
			sb.WriteString(lit)
		}

		return nil

	case KindSubtemplate:
		sub, ok := lookup(c.reg, s.Name)
		if !ok {
			return &UndefinedSubtemplateError{Name: s.Name, Pos: s.Pos}
		}

		if depth+1 > c.maxDepth {
			return &RecursionLimitError{
				Depth: depth + 1,
				Max:   c.maxDepth,
				Chain: append(slices.Clone(c.chain), s.Name),
			}
		}

		c.chain = append(c.chain, s.Name)
		defer func() { c.chain = c.chain[:len(c.chain)-1] }()

		return c.wrap(sb, s.Optional, func() error {
			return c.template(sb, sub, depth+1)
		})

	case KindVarBind:
		name := "g" + strconv.Itoa(len(c.idents))
		c.idents = append(c.idents, s.Name)

		sb.WriteString(`(?P<` + name + `>.*)`)

		if s.Optional {
			sb.WriteByte('?')
		}

		return nil

	case KindGroup:
		if depth+1 > c.maxDepth {
			return &RecursionLimitError{
				Depth: depth + 1,
				Max:   c.maxDepth,
				Chain: slices.Clone(c.chain),
			}
		}

		return c.wrap(sb, s.Optional, func() error {
			return c.template(sb, s.Group, depth+1)
		})

	default:
		return ErrInvalidOption.With(
			slog.String("option", "symbol"),
			slog.String("kind", s.Kind.String()))
	}
}

// wrap emits a non-capturing group around the output of fn.
func (c *compiler) wrap(sb *strings.Builder, optional bool, fn func() error) error {
	sb.WriteString(`(?:`)

	err := fn()
	if err != nil {
		return err
	}

	sb.WriteByte(')')

	if optional {
		sb.WriteByte('?')
	}

	return nil
}
