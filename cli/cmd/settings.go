package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/halfbit/lang"
	"github.com/ardnew/halfbit/log"
)

// Settings holds the evaluation settings shared by every command.
type Settings struct {
	Section    string   // section to evaluate (-e)
	Data       []string // data files pushed as successive scopes
	Define     []string // name=expression bindings
	Accumulate string   // "text" or "list"
	MaxDepth   int
	TabWidth   int
	Lenient    bool
}

type settingsKey struct{}

// WithSettings returns a new context.Context containing s.
func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

func settingsFrom(ctx context.Context) Settings {
	s, _ := ctx.Value(settingsKey{}).(Settings)

	return s
}

// Options returns the engine options selected by s.
func (s Settings) Options() []lang.Option {
	acc, _ := lang.ParseAccumulation(s.Accumulate)

	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithMaxDepth(s.MaxDepth),
		lang.WithTabWidth(s.TabWidth),
		lang.WithAccumulation(acc),
	}
}

// Mode returns the variable resolution mode selected by s.
func (s Settings) Mode() lang.Mode {
	if s.Lenient {
		return lang.Lenient
	}

	return lang.Strict
}

// Registry returns a registry holding the built-in helpers.
func (s Settings) Registry() (*lang.Registry, error) {
	r := lang.NewRegistry()
	if err := lang.RegisterBuiltins(r); err != nil {
		return nil, err
	}

	return r, nil
}

// Context builds the evaluation context: one scope per data file in order,
// then an innermost scope holding the definitions. Each definition is
// evaluated with r against the context built so far.
func (s Settings) Context(ctx context.Context, r *lang.Registry) (*lang.Context, error) {
	paths := uniquePaths(s.Data)
	scopes := make([]lang.Scope, 0, len(paths))

	for _, path := range paths {
		scope, err := lang.LoadScope(ctx, path)
		if err != nil {
			return nil, err
		}

		log.DebugContext(ctx, "load data",
			slog.String("path", path),
			slog.Int("names", len(scope)))

		scopes = append(scopes, scope)
	}

	c := lang.NewContext(s.Mode(), scopes...)
	c.PushScope(nil)

	for _, def := range s.Define {
		if err := s.define(ctx, c, r, def); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// define evaluates a single name=expression binding into c.
func (s Settings) define(
	ctx context.Context,
	c *lang.Context,
	r *lang.Registry,
	def string,
) error {
	name, src, ok := strings.Cut(def, "=")
	name = strings.TrimSpace(name)

	if !ok || !lang.ValidName(name) {
		return ErrDefine.With(slog.String("define", def)).
			Wrap(lang.NewError("expected name=expression"))
	}

	failed := func(err error) error {
		return ErrDefine.With(slog.String("name", name)).Wrap(err).source(src)
	}

	root, err := lang.Parse(ctx, src, s.Options()...)
	if err != nil {
		return failed(err)
	}

	v, err := lang.Evaluate(ctx, root, c, r, s.Options()...)
	if err != nil {
		return failed(err)
	}

	c.Define(name, v)

	log.TraceContext(ctx, "define",
		slog.String("name", name),
		slog.String("value", v.Quote()))

	return nil
}

// load reads the document named by path with the engine options of s.
func (s Settings) load(ctx context.Context, path string) (*lang.Document, error) {
	return lang.LoadDocument(ctx, path, s.Options()...)
}

// evaluate evaluates the selected section of doc. Failures carry the
// document source for error snippets.
func (s Settings) evaluate(ctx context.Context, doc *lang.Document) (lang.Value, error) {
	if s.Section == "" {
		return lang.None(), ErrMissingSection
	}

	r, err := s.Registry()
	if err != nil {
		return lang.None(), err
	}

	c, err := s.Context(ctx, r)
	if err != nil {
		return lang.None(), err
	}

	v, err := doc.Evaluate(ctx, s.Section, c, r)
	if err != nil {
		return lang.None(), sourced(err, doc)
	}

	return v, nil
}
