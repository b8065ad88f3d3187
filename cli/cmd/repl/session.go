package repl

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/ardnew/halfbit/lang"
)

// Session evaluates REPL input. Input naming a section of the document
// evaluates that section; "name = expression" binds a variable for later
// input; anything else is parsed and evaluated as a section body. All input
// shares one context.
type Session struct {
	doc     *lang.Document
	context *lang.Context
	helpers *lang.Registry
	opts    []lang.Option
}

// NewSession returns a Session over doc, which may be nil.
func NewSession(
	doc *lang.Document,
	c *lang.Context,
	r *lang.Registry,
	opts ...lang.Option,
) *Session {
	if c == nil {
		c = lang.NewContext(lang.Strict)
	}

	if r == nil {
		r = lang.NewRegistry()
	}

	return &Session{doc: doc, context: c, helpers: r, opts: opts}
}

var assignment = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=([^=].*)$`)

// Eval evaluates one line of input.
func (s *Session) Eval(ctx context.Context, input string) (lang.Value, error) {
	input = strings.TrimSpace(input)

	if s.doc != nil {
		if _, ok := s.doc.Lookup(input); ok {
			return s.doc.Evaluate(ctx, input, s.context, s.helpers)
		}
	}

	if m := assignment.FindStringSubmatch(input); m != nil && lang.ValidName(m[1]) {
		v, err := s.body(ctx, m[2])
		if err != nil {
			return lang.None(), err
		}

		s.context.Define(m[1], v)

		return v, nil
	}

	return s.body(ctx, input)
}

func (s *Session) body(ctx context.Context, src string) (lang.Value, error) {
	root, err := lang.Parse(ctx, src, s.opts...)
	if err != nil {
		return lang.None(), err
	}

	return lang.Evaluate(ctx, root, s.context, s.helpers, s.opts...)
}

// Reload reads the document again from its path.
func (s *Session) Reload(ctx context.Context) error {
	if s.doc == nil {
		return ErrNoDocument
	}

	doc, err := lang.LoadDocument(ctx, s.doc.Path, s.opts...)
	if err != nil {
		return err
	}

	s.doc.Forget(doc)
	s.doc = doc

	return nil
}

// Sections returns the sections of the document.
func (s *Session) Sections() []lang.Section {
	if s.doc == nil {
		return nil
	}

	return s.doc.Sections()
}

// Preview returns the first line of a section body, shortened to width.
func (s *Session) Preview(name string, width int) string {
	if s.doc == nil {
		return ""
	}

	body, _ := s.doc.Body(name)
	body = strings.TrimSpace(body)

	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = strings.TrimSpace(body[:i]) + " ..."
	}

	if width > 3 && len(body) > width {
		body = body[:width-3] + "..."
	}

	return body
}

// keywords offered as completions.
var keywords = []string{"and", "or", "not", "true", "false", "none", "if", "each", "else", "as"}

// Candidates returns completion candidates for a word whose member-access
// chain is parent. The top level offers sections, variables, helpers, and
// keywords; a parent that resolves to a map offers its keys.
func (s *Session) Candidates(parent string) []string {
	if parent == "" {
		set := map[string]struct{}{}

		for _, name := range slices.Concat(
			s.context.Names(), s.helpers.Names(), keywords,
		) {
			set[name] = struct{}{}
		}

		for _, sec := range s.Sections() {
			set[sec.Name] = struct{}{}
		}

		return slices.Sorted(maps.Keys(set))
	}

	v, err := s.context.Resolve(strings.Split(parent, "."))
	if err != nil {
		return nil
	}

	m, ok := v.AsMap()
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}
