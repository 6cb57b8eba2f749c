package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/phrasegen/pkg"
)

// Version prints the program version.
type Version struct{}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	_, out := streamsFrom(ctx)

	if _, err := fmt.Fprintln(out, pkg.Name, pkg.Version); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
