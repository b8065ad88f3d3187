package cmd

import (
	"context"

	"github.com/ardnew/halfbit/cli/cmd/repl"
	"github.com/ardnew/halfbit/lang"
	"github.com/ardnew/halfbit/log"
)

// Repl starts an interactive evaluator.
type Repl struct {
	File string `arg:"" help:"Document providing sections" name:"file" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (c *Repl) Run(ctx context.Context) error {
	s := settingsFrom(ctx)

	var doc *lang.Document

	if c.File != "" {
		var err error

		doc, err = s.load(ctx, c.File)
		if err != nil {
			return err
		}
	}

	r, err := s.Registry()
	if err != nil {
		return err
	}

	lc, err := s.Context(ctx, r)
	if err != nil {
		return err
	}

	session := repl.NewSession(doc, lc, r, s.Options()...)

	return repl.Run(ctx, session, kongVar(ctx, CacheIdentifier), log.Default())
}
