package lang

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/ardnew/phrasegen/log"
)

// Expansion is the result of a successful generation call.
type Expansion struct {
	Text     string
	Bindings map[string]string // Binding environment at the end of the call
}

// Generate expands the template into text, resolving subtemplate calls
// through reg. A nil reg behaves as an empty registry.
//
// Output is reproducible for a fixed template, registry contents, seed, and
// inclusion probability. On error no text is returned.
func Generate(
	ctx context.Context,
	t *Template,
	reg Registry,
	opts ...Option,
) (string, error) {
	x, err := Expand(ctx, t, reg, opts...)
	if err != nil {
		return "", err
	}

	return x.Text, nil
}

// Expand is like Generate but also returns the final binding environment.
func Expand(
	ctx context.Context,
	t *Template,
	reg Registry,
	opts ...Option,
) (*Expansion, error) {
	o := makeOptions(opts...)

	err := o.validate()
	if err != nil {
		return nil, err
	}

	if t == nil || len(t.Clauses) == 0 {
		return nil, ErrInvalidOption.With(slog.String("option", "template"))
	}

	g := &generator{
		ctx:         ctx,
		reg:         reg,
		rng:         o.random(),
		probability: o.probability,
		maxDepth:    o.maxDepth,
		maxOutput:   o.maxOutput,
		separator:   o.separator,
		bindings:    o.bindings,
		logger:      o.logger,
	}

	if g.bindings == nil {
		g.bindings = make(map[string]string)
	}

	text, err := g.template(t, 0)
	if err != nil {
		g.logger.DebugContext(ctx, "generation failed", slog.Any("error", err))

		return nil, err
	}

	g.logger.DebugContext(ctx, "generation complete",
		slog.Int("length", len(text)),
		slog.Int("binding_count", len(g.bindings)))

	return &Expansion{Text: text, Bindings: g.bindings}, nil
}

// generator holds the state of one generation call.
type generator struct {
	ctx         context.Context
	reg         Registry
	rng         *rand.Rand
	probability float64
	maxDepth    int
	maxOutput   int
	separator   string
	bindings    map[string]string
	length      int      // bytes emitted so far
	chain       []string // subtemplate call stack
	logger      log.Logger
}

// template selects one clause uniformly and expands it.
func (g *generator) template(t *Template, depth int) (string, error) {
	err := g.ctx.Err()
	if err != nil {
		return "", context.Cause(g.ctx)
	}

	if t == nil || len(t.Clauses) == 0 {
		return "", ErrInvalidOption.With(
			slog.String("option", "template"),
			slog.Any("chain", slices.Clone(g.chain)))
	}

	c := t.Clauses[0]
	if n := len(t.Clauses); n > 1 {
		i := g.rng.IntN(n)
		c = t.Clauses[i]

		g.logger.TraceContext(g.ctx, "clause selected",
			slog.Int("index", i),
			slog.Int("of", n),
			slog.Int("depth", depth))
	}

	return g.clause(c, depth)
}

// clause expands each symbol in order and joins the non-empty fragments.
func (g *generator) clause(c *Clause, depth int) (string, error) {
	var buf strings.Builder

	for _, s := range c.Symbols {
		// Excluded optional symbols have no side effects at all.
		if s.Optional && g.rng.Float64() >= g.probability {
			continue
		}

		frag, err := g.symbol(s, depth)
		if err != nil {
			return "", err
		}

		if frag == "" {
			continue
		}

		if buf.Len() > 0 && g.separator != "" {
			err := g.charge(len(g.separator))
			if err != nil {
				return "", err
			}

			buf.WriteString(g.separator)
		}

		buf.WriteString(frag)
	}

	return buf.String(), nil
}

func (g *generator) symbol(s *Symbol, depth int) (string, error) {
	switch s.Kind {
	case KindLiteral:
		return s.Text, g.charge(len(s.Text))

	case KindSubtemplate:
		sub, ok := lookup(g.reg, s.Name)
		if !ok {
			return "", &UndefinedSubtemplateError{Name: s.Name, Pos: s.Pos}
		}

		err := g.descend(depth, s.Name)
		if err != nil {
			return "", err
		}

		g.chain = append(g.chain, s.Name)
		defer func() { g.chain = g.chain[:len(g.chain)-1] }()

		g.logger.TraceContext(g.ctx, "subtemplate resolved",
			slog.String("name", s.Name),
			slog.Int("depth", depth+1))

		return g.template(sub, depth+1)

	case KindVarBind:
		if v, ok := g.bindings[s.Name]; ok {
			return v, g.charge(len(v))
		}

		// The first occurrence establishes the binding point.
		g.bindings[s.Name] = ""

		return "", nil

	case KindGroup:
		err := g.descend(depth, "")
		if err != nil {
			return "", err
		}

		return g.template(s.Group, depth+1)

	default:
		return "", ErrInvalidOption.With(
			slog.String("option", "symbol"),
			slog.String("kind", s.Kind.String()))
	}
}

// descend checks that one more level of nesting stays within the limit.
func (g *generator) descend(depth int, name string) error {
	if depth+1 <= g.maxDepth {
		return nil
	}

	chain := slices.Clone(g.chain)
	if name != "" {
		chain = append(chain, name)
	}

	return &RecursionLimitError{Depth: depth + 1, Max: g.maxDepth, Chain: chain}
}

// charge accounts n more bytes of output against the budget.
func (g *generator) charge(n int) error {
	if g.length+n > g.maxOutput {
		return &BudgetExceededError{Limit: g.maxOutput, Length: g.length + n}
	}

	g.length += n

	return nil
}
