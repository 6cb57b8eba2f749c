package cmd

import (
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Candidate is one generated output offered to an acceptance filter.
type Candidate struct {
	Text     string
	Seed     int64
	Attempt  int
	Bindings map[string]string
}

// env returns the variables visible to an acceptance expression.
func (c Candidate) env() map[string]any {
	bindings := c.Bindings
	if bindings == nil {
		bindings = map[string]string{}
	}

	return map[string]any{
		"text":     c.Text,
		"length":   len(c.Text),
		"words":    len(strings.Fields(c.Text)),
		"seed":     c.Seed,
		"attempt":  c.Attempt,
		"bindings": bindings,
	}
}

// Filter is a compiled acceptance expression. The zero value accepts every
// candidate.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source as a boolean expression over the variables
// text, length, words, seed, attempt, and bindings. An empty source
// accepts everything.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Filter{}, nil
	}

	program, err := expr.Compile(source,
		expr.Env(Candidate{}.env()),
		expr.AsBool(),
	)
	if err != nil {
		return nil, ErrAcceptExpr.Wrap(err).
			With(slog.String("expr", source))
	}

	return &Filter{source: source, program: program}, nil
}

// Accept reports whether c satisfies the filter.
func (f *Filter) Accept(c Candidate) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, c.env())
	if err != nil {
		return false, ErrAcceptExpr.Wrap(err).
			With(slog.String("expr", f.source))
	}

	ok, _ := out.(bool)

	return ok, nil
}

// String returns the expression source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}

	return f.source
}
