package cmd

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/halfbit/lang"
	"github.com/ardnew/halfbit/pkg"
)

// Exit codes returned by the hb command.
const (
	ExitOK    = 0 // success
	ExitParse = 1 // input, lex, parse, or section lookup failure
	ExitEval  = 2 // evaluation failure
)

// Error represents a CLI command error with structured logging support.
// It may carry the source text the wrapped error refers to, which
// [Describe] uses to render a snippet.
type Error struct {
	msg    string
	err    error
	attrs  []slog.Attr
	text   string
	hasSrc bool
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message, so that
// wrapped copies of a sentinel match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:    e.msg,
		err:    err,
		attrs:  e.attrs, // Share attrs
		text:   e.text,
		hasSrc: e.hasSrc,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:    e.msg,
		err:    e.err,
		attrs:  newAttrs,
		text:   e.text,
		hasSrc: e.hasSrc,
	}
}

// source returns a copy of the error that refers to text.
func (e *Error) source(text string) *Error {
	d := *e
	d.text, d.hasSrc = text, true

	return &d
}

var (
	ErrMissingSection = NewError("no section given (use -e <section>)")
	ErrDefine         = NewError("invalid definition")
	ErrWatch          = NewError("watch")
	ErrWriteConfig    = NewError("write configuration file")
	ErrFileExists     = NewError("file exists (use --force to overwrite)")
)

// sourced wraps err with the document it occurred in. The message is
// prefixed with the document path.
func sourced(err error, doc *lang.Document) error {
	if err == nil {
		return nil
	}

	name := doc.Path
	if name == stdinSource {
		name = "<stdin>"
	}

	return (&Error{err: err, msg: name}).
		With(slog.String("path", doc.Path)).
		source(doc.Source)
}

// ExitCode maps err to the process exit status: [ExitOK] for nil,
// [ExitEval] for evaluation errors, and [ExitParse] for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case lang.ClassOf(err) == lang.ClassEval:
		return ExitEval
	default:
		return ExitParse
	}
}

// Describe renders err for the terminal: the message prefixed with the
// command name, followed by a source snippet when the error has a position
// in known source text.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(pkg.Name + ": " + err.Error() + "\n")

	var (
		ce *Error
		le *lang.Error
	)

	if errors.As(err, &ce) && ce.hasSrc && errors.As(err, &le) {
		b.WriteString(le.Snippet(ce.text))
	}

	return b.String()
}
