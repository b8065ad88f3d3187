package lang

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/readahead"
)

// Section is a named body within a [Document].
type Section struct {
	Name string
	// Header is the position of the section name.
	Header Position
	// Body is the position of the first byte after the colon.
	Body Position
	// End is the offset one past the last byte of the body.
	End int
}

// Document is a source text divided into named sections.
//
// A section header is a line that starts at column 1 with a name followed by
// a colon. The body runs from the colon over every following blank or
// indented line. Any other line ends the body and is otherwise ignored, so
// Makefiles and similar files can carry sections alongside their own
// content. Bodies are only lexed and parsed when compiled.
type Document struct {
	Path     string
	Source   string
	index    map[string]int
	sections []Section
	shadowed []Section
	opts     options
}

// NewDocument divides src into sections. path names the document in
// diagnostics.
func NewDocument(path, src string, opts ...Option) *Document {
	d := &Document{
		Path:   path,
		Source: src,
		index:  map[string]int{},
		opts:   makeOptions(opts...),
	}

	d.split()

	return d
}

// ReadDocument reads a document from r.
func ReadDocument(
	ctx context.Context,
	path string,
	r io.Reader,
	opts ...Option,
) (*Document, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("path", path))
	}

	d := NewDocument(path, string(data), opts...)

	d.opts.logger.DebugContext(ctx, "read document",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
		slog.Int("sections", len(d.sections)))

	return d, nil
}

// LoadDocument reads the document at path, or standard input when path
// is "-".
func LoadDocument(ctx context.Context, path string, opts ...Option) (*Document, error) {
	if path == "-" {
		return ReadDocument(ctx, path, os.Stdin, opts...)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	return ReadDocument(ctx, path, f, opts...)
}

// Sections returns the sections in document order. When a name is defined
// more than once only the first definition is included.
func (d *Document) Sections() []Section {
	return append([]Section(nil), d.sections...)
}

// Shadowed returns later definitions of names that were already defined.
func (d *Document) Shadowed() []Section {
	return append([]Section(nil), d.shadowed...)
}

// Names returns the section names in document order.
func (d *Document) Names() []string {
	names := make([]string, len(d.sections))
	for i, s := range d.sections {
		names[i] = s.Name
	}

	return names
}

// Lookup returns the section called name.
func (d *Document) Lookup(name string) (Section, bool) {
	i, ok := d.index[name]
	if !ok {
		return Section{}, false
	}

	return d.sections[i], true
}

// Body returns the raw body text of the named section.
func (d *Document) Body(name string) (string, bool) {
	s, ok := d.Lookup(name)
	if !ok {
		return "", false
	}

	return d.Source[s.Body.Offset:s.End], true
}

// Compile parses the named section. A missing section fails with
// [ErrSectionNotFound] without lexing anything.
func (d *Document) Compile(ctx context.Context, name string) (*AST, error) {
	s, ok := d.Lookup(name)
	if !ok {
		return nil, ErrSectionNotFound.Detailf("%s", name).
			With(slog.String("name", name), slog.String("path", d.Path))
	}

	return compileCached(ctx, d.Source, s, d.opts)
}

// Forget drops the compiled sections of d from the shared section cache,
// keeping those that next compiles to the same entry. Call it when next
// replaces d, as when a changed file is read again; next may be nil.
func (d *Document) Forget(next *Document) {
	forgetCached(d, next)
}

// Evaluate compiles and evaluates the named section.
func (d *Document) Evaluate(
	ctx context.Context,
	name string,
	c *Context,
	r *Registry,
) (Value, error) {
	root, err := d.Compile(ctx, name)
	if err != nil {
		return None(), err
	}

	return (&Evaluator{helpers: orEmpty(r), opts: d.opts}).Evaluate(ctx, root, c)
}

func orEmpty(r *Registry) *Registry {
	if r == nil {
		return NewRegistry()
	}

	return r
}

// split scans the source for section headers.
func (d *Document) split() {
	var (
		cur  *Section
		pos  = origin
		src  = d.Source
		done = func() {
			if cur == nil {
				return
			}

			if _, dup := d.index[cur.Name]; dup {
				d.shadowed = append(d.shadowed, *cur)
			} else {
				d.index[cur.Name] = len(d.sections)
				d.sections = append(d.sections, *cur)
			}

			cur = nil
		}
	)

	for pos.Offset < len(src) {
		start := pos.Offset
		end, next := lineEnd(src, start)
		line := src[start:end]

		switch {
		case cur != nil && (isBlank(line) || line[0] == ' ' || line[0] == '\t'):
			if !isBlank(line) {
				cur.End = end
			}

		default:
			done()

			if name, colon, ok := header(line); ok {
				cur = &Section{
					Name:   name,
					Header: pos,
					Body:   d.columnAt(pos, start+colon+1),
					End:    end,
				}
			}
		}

		pos = Position{Offset: next, Line: pos.Line + 1, Column: 1}
	}

	done()
}

// columnAt returns the position of offset, which lies on the line starting
// at lineStart.
func (d *Document) columnAt(lineStart Position, offset int) Position {
	l := newLexer(d.Source, lineStart, offset, d.opts.tabWidth)
	for !l.eof() {
		l.advance()
	}

	return l.pos
}

// lineEnd returns the end of the line starting at start, excluding its
// terminator, and the start of the following line.
func lineEnd(src string, start int) (end, next int) {
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\n':
			return i, i + 1
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				return i, i + 2
			}

			return i, i + 1
		}
	}

	return len(src), len(src)
}

func isBlank(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return false
		}
	}

	return true
}

// header reports whether line is a section header, returning the section
// name and the index of its colon.
func header(line string) (name string, colon int, ok bool) {
	if line == "" || !isIdentifierStart(line[0]) {
		return "", 0, false
	}

	i := 1
	for i < len(line) && isSectionNameByte(line[i]) {
		i++
	}

	name = line[:i]

	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}

	if i >= len(line) || line[i] != ':' {
		return "", 0, false
	}

	// Makefile "::" rules and ":=" assignments
	if i+1 < len(line) && (line[i+1] == ':' || line[i+1] == '=') {
		return "", 0, false
	}

	return name, i, true
}

func isSectionNameByte(c byte) bool {
	return isIdentifierContinue(c) || c == '-' || c == '.'
}
