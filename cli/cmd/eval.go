package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/halfbit/lang"
	"github.com/ardnew/halfbit/log"
)

// Eval evaluates a section of a document and prints the result.
type Eval struct {
	File   string `arg:"" default:"-"    help:"Document file or '-' for stdin"                   name:"file"`
	Output string `       default:"text" help:"Output format (${enum})"     enum:"text,json,yaml" short:"o"`
	Watch  bool   `                      help:"Re-evaluate when the document or data files change" short:"w"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := settingsFrom(ctx)
	if s.Section == "" {
		return ErrMissingSection
	}

	format, _ := lang.ParseOutputFormat(e.Output)

	if e.Watch {
		return e.watch(ctx, s, format)
	}

	_, err = e.once(ctx, s, format, stdout(ctx))

	return err
}

// once loads the document, evaluates the selected section, and writes the
// result to w. The document is returned whenever it was read.
func (e *Eval) once(
	ctx context.Context,
	s Settings,
	format lang.OutputFormat,
	w io.Writer,
) (*lang.Document, error) {
	doc, err := s.load(ctx, e.File)
	if err != nil {
		return nil, err
	}

	v, err := s.evaluate(ctx, doc)
	if err != nil {
		return doc, err
	}

	log.DebugContext(ctx, "evaluated",
		slog.String("section", s.Section),
		slog.String("kind", v.Kind().String()))

	return doc, lang.Write(ctx, w, v, format)
}
