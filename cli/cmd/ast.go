package cmd

import (
	"context"

	"github.com/ardnew/halfbit/lang"
)

// AST prints the syntax tree of a section.
type AST struct {
	File   string `arg:"" default:"-"    help:"Document file or '-' for stdin"          name:"file"`
	Format string `       default:"tree" help:"Output format (${enum})" enum:"tree,json,yaml" short:"f"`
}

// Run executes the ast command.
func (c *AST) Run(ctx context.Context) error {
	s := settingsFrom(ctx)
	if s.Section == "" {
		return ErrMissingSection
	}

	doc, err := s.load(ctx, c.File)
	if err != nil {
		return err
	}

	root, err := doc.Compile(ctx, s.Section)
	if err != nil {
		return sourced(err, doc)
	}

	format := lang.OutputText
	if c.Format != "tree" {
		format, _ = lang.ParseOutputFormat(c.Format)
	}

	return lang.WriteTree(ctx, stdout(ctx), root, format)
}
