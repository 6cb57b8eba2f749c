package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/phrasegen/lang"
	"github.com/ardnew/phrasegen/log"
)

// Match recognizes input text produced by a template and prints the values
// captured for its variable bindings. Without a template source, each input
// is matched against the library templates in definition order and the first
// match is reported.
type Match struct {
	TemplateInput `embed:""`

	Format string   `default:"text" enum:"text,json,yaml"                     help:"Output format (${enum})."`
	Input  []string `arg:""         help:"Input text; each line of stdin when omitted." optional:""`
}

// MatchResult is the outcome of matching one input.
type MatchResult struct {
	Input    string            `json:"input"              yaml:"input"`
	Template string            `json:"template,omitempty" yaml:"template,omitempty"`
	Bindings map[string]string `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// matchFunc matches one input, returning the name of the matching library
// template when known.
type matchFunc func(ctx context.Context, input string) (string, *lang.Match, error)

// Run executes the match command.
func (m *Match) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	inputs, err := m.inputs(ctx)
	if err != nil {
		return err
	}

	match, err := m.matcher(ctx, g)
	if err != nil {
		return err
	}

	var (
		results []MatchResult
		missed  []string
	)

	for _, input := range inputs {
		name, res, err := match(ctx, input)
		if err != nil {
			return err
		}

		if res == nil {
			log.DebugContext(ctx, "no match", slog.String("input", input))

			missed = append(missed, input)

			continue
		}

		results = append(results, MatchResult{
			Input:    input,
			Template: name,
			Bindings: res.Bindings(),
		})
	}

	data, err := m.encode(ctx, results)
	if err != nil {
		return err
	}

	if err := emit(ctx, "", data); err != nil {
		return err
	}

	if len(missed) > 0 {
		return ErrNoMatch.With(
			slog.Int("count", len(missed)),
			slog.String("input", missed[0]),
		)
	}

	return nil
}

// search reports whether no template source was given.
func (m *Match) search() bool {
	return m.Template == "" && m.Name == "" && m.File == ""
}

// matcher returns the function matching each input: against the selected
// template, or against every library template when none is selected.
func (m *Match) matcher(ctx context.Context, g *Globals) (matchFunc, error) {
	if m.search() {
		lib, err := g.Load(ctx)
		if err != nil {
			return nil, err
		}

		opts := g.ParseOptions()

		return func(ctx context.Context, input string) (string, *lang.Match, error) {
			return lib.Find(ctx, input, opts...)
		}, nil
	}

	t, lib, err := m.Resolve(ctx, g)
	if err != nil {
		return nil, err
	}

	matcher := lang.NewMatcher(lib, g.ParseOptions()...)

	return func(ctx context.Context, input string) (string, *lang.Match, error) {
		res, err := matcher.Match(ctx, t, input)

		return m.Name, res, err
	}, nil
}

// inputs returns the texts to match: the joined arguments, or each
// non-blank line of standard input.
func (m *Match) inputs(ctx context.Context) ([]string, error) {
	if len(m.Input) > 0 {
		return []string{strings.Join(m.Input, " ")}, nil
	}

	if m.File == stdinSource {
		return nil, ErrInputConflict
	}

	in, _ := streamsFrom(ctx)

	var lines []string

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, ErrReadTemplate.Wrap(err).With(slog.String("file", stdinSource))
	}

	return lines, nil
}

func (m *Match) encode(ctx context.Context, results []MatchResult) ([]byte, error) {
	if m.Format != formatText && m.Format != "" {
		return marshal(ctx, m.Format, results)
	}

	var sb strings.Builder

	for _, r := range results {
		keys := slices.Sorted(maps.Keys(r.Bindings))

		pairs := make([]string, 0, len(keys)+1)
		if m.search() {
			pairs = append(pairs, r.Template)
		}

		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%q", k, r.Bindings[k]))
		}

		sb.WriteString(strings.Join(pairs, " "))
		sb.WriteByte('\n')
	}

	return []byte(sb.String()), nil
}
