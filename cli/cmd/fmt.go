package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/phrasegen/lang"
)

// Fmt parses a template and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical template syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as abstract syntax tree."`
}

// format resolves the template selected by in and writes it with fn.
func format(
	ctx context.Context,
	g *Globals,
	in *TemplateInput,
	name string,
	fn func(t *lang.Template, w io.Writer) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, _, err := in.Resolve(ctx, g)
	if err != nil {
		return err
	}

	_, out := streamsFrom(ctx)

	if err := fn(t, out); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", name))
	}

	return nil
}

// Native formats a template as canonical template syntax.
type Native struct {
	TemplateInput `embed:""`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context, g *Globals) error {
	return format(ctx, g, &f.TemplateInput, "native",
		func(t *lang.Template, w io.Writer) error {
			return t.Format(ctx, w)
		})
}

// JSON formats a template as JSON.
type JSON struct {
	TemplateInput `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context, g *Globals) error {
	return format(ctx, g, &j.TemplateInput, formatJSON,
		func(t *lang.Template, w io.Writer) error {
			return t.FormatJSON(ctx, w, j.Indent)
		})
}

// YAML formats a template as YAML.
type YAML struct {
	TemplateInput `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context, g *Globals) error {
	return format(ctx, g, &y.TemplateInput, formatYAML,
		func(t *lang.Template, w io.Writer) error {
			return t.FormatYAML(ctx, w, y.Indent)
		})
}

// AST formats a template as an abstract syntax tree representation.
type AST struct {
	TemplateInput `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context, g *Globals) error {
	return format(ctx, g, &a.TemplateInput, "ast",
		func(t *lang.Template, w io.Writer) error {
			t.Print(w)

			return nil
		})
}
