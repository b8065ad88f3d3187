package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// Sections lists the sections of a document.
type Sections struct {
	File     string `arg:"" default:"-" help:"Document file or '-' for stdin" name:"file"`
	Shadowed bool   `                   help:"Also list later definitions of repeated names"`
}

// Run executes the sections command.
func (c *Sections) Run(ctx context.Context) error {
	s := settingsFrom(ctx)

	doc, err := s.load(ctx, c.File)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout(ctx), 0, 4, 2, ' ', 0)

	for _, sec := range doc.Sections() {
		fmt.Fprintf(tw, "%s\t%s\n", sec.Name, sec.Header)
	}

	if c.Shadowed {
		for _, sec := range doc.Shadowed() {
			first, _ := doc.Lookup(sec.Name)
			fmt.Fprintf(tw, "%s\t%s\t(shadowed by %s)\n", sec.Name, sec.Header, first.Header)
		}
	}

	return tw.Flush()
}
