package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ardnew/halfbit/pkg"
)

// Version prints the program version.
type Version struct {
	Verbose bool `help:"Include the Go toolchain and platform" short:"v"`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	w := stdout(ctx)

	if !v.Verbose {
		_, err := fmt.Fprintln(w, pkg.Name, pkg.Version)

		return err
	}

	_, err := fmt.Fprintf(w, "%s %s (%s %s/%s)\n",
		pkg.Name, pkg.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}
