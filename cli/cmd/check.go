package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/phrasegen/library"
	"github.com/ardnew/phrasegen/log"
)

// Check loads the template libraries and reports undefined subtemplate
// references and reference cycles.
type Check struct {
	Quiet bool `help:"Print nothing when the libraries are valid." short:"q"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	lib, err := g.Load(ctx)
	if err != nil {
		return err
	}

	_, out := streamsFrom(ctx)

	problems := unjoin(lib.Validate(ctx))
	if len(problems) == 0 {
		if !c.Quiet {
			fmt.Fprintf(out, "ok: %d subtemplates, %d templates\n",
				len(lib.Names(library.KindSubtemplate)),
				len(lib.Names(library.KindTemplate)))
		}

		return nil
	}

	for _, p := range problems {
		log.DebugContext(ctx, "check", slog.Any("problem", p))
		fmt.Fprintln(out, p)
	}

	return ErrCheckFailed.With(slog.Int("problems", len(problems)))
}

// unjoin splits an error built with errors.Join into its parts.
func unjoin(err error) []error {
	if err == nil {
		return nil
	}

	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}

	return []error{err}
}
