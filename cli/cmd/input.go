package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/phrasegen/lang"
	"github.com/ardnew/phrasegen/library"
)

// TemplateInput selects the template a command operates on. At most one
// source may be given; standard input is read when none is.
type TemplateInput struct {
	Template string `help:"Template source text."                                 short:"t" xor:"input"`
	Name     string `help:"Name of a library template."                           short:"n" xor:"input"`
	File     string `help:"Template source file or '-' for stdin." placeholder:"FILE" short:"f" xor:"input"`
}

// source describes where the template comes from for log attributes.
func (in *TemplateInput) source() slog.Attr {
	switch {
	case in.Template != "":
		return slog.String("template", in.Template)

	case in.Name != "":
		return slog.String("name", in.Name)

	case in.File != "" && in.File != stdinSource:
		return slog.String("file", in.File)

	default:
		return slog.String("file", stdinSource)
	}
}

// Resolve loads the libraries named by g and returns the selected template
// together with the library used to resolve its subtemplate calls.
func (in *TemplateInput) Resolve(
	ctx context.Context,
	g *Globals,
) (*lang.Template, *library.Library, error) {
	lib, err := g.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	if in.Name != "" {
		t, err := lib.Template(in.Name)
		if err != nil {
			return nil, nil, err
		}

		return t, lib, nil
	}

	var r io.Reader

	switch {
	case in.Template != "":
		r = strings.NewReader(in.Template)

	case in.File != "" && in.File != stdinSource:
		f, err := os.Open(in.File)
		if err != nil {
			return nil, nil, ErrReadTemplate.Wrap(err).With(in.source())
		}
		defer f.Close()

		r = f

	default:
		r, _ = streamsFrom(ctx)
	}

	t, err := lang.ParseReader(ctx, r, g.ParseOptions()...)
	if err != nil {
		return nil, nil, ErrReadTemplate.Wrap(err).With(in.source())
	}

	return t, lib, nil
}
