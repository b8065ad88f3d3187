package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Class groups errors by the stage that produced them.
type Class int

const (
	ClassNone  Class = iota // not an engine error
	ClassInput              // reading documents or data
	ClassParse              // lexing, parsing, section lookup
	ClassEval               // evaluation
)

func (c Class) String() string {
	switch c {
	case ClassInput:
		return "input"
	case ClassParse:
		return "parse"
	case ClassEval:
		return "eval"
	default:
		return "none"
	}
}

// Predefined errors (sentinel values).
var (
	ErrReadInput = newError(ClassInput, "failed to read input")
	ErrData      = newError(ClassInput, "invalid data")

	ErrLex             = newError(ClassParse, "lex error")
	ErrParse           = newError(ClassParse, "parse error")
	ErrSectionNotFound = newError(ClassParse, "section not found")

	ErrUndefinedVariable = newError(ClassEval, "undefined variable")
	ErrType              = newError(ClassEval, "type error")
	ErrDivisionByZero    = newError(ClassEval, "division by zero")
	ErrUnknownHelper     = newError(ClassEval, "unknown helper")
	ErrHelper            = newError(ClassEval, "helper error")
	ErrRecursionLimit    = newError(ClassEval, "recursion limit exceeded")

	ErrDuplicateHelper = newError(ClassNone, "duplicate helper")
	ErrRegistrySealed  = newError(ClassNone, "helper registry sealed")
)

// Error represents an engine error with optional source position and
// structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.With], [Error.Wrap], [Error.At]
// or [Error.Detailf] match that sentinel with [errors.Is].
type Error struct {
	base   *Error
	err    error // Wrapped error (for errors.Unwrap)
	msg    string
	detail string
	attrs  []slog.Attr
	pos    Position
	class  Class
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newError(class Class, msg string) *Error {
	return &Error{msg: msg, class: class}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
// The message has the form "<msg>: <detail>: <cause> at <line>:<column>",
// omitting parts that are not set.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.detail != "" {
		part = append(part, e.detail)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")
	if e.pos.Valid() {
		s += " at " + e.pos.String()
	}

	return s
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this error was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.detail != "" {
		attrs = append(attrs, slog.String("detail", e.detail))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos.Valid() {
		attrs = append(attrs, slog.Any("position", e.pos))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Class returns the stage that produced the error.
func (e *Error) Class() Class { return e.class }

// Position returns the source position of the error, if known.
func (e *Error) Position() (Position, bool) { return e.pos, e.pos.Valid() }

// Attr returns the value of the structured attribute named key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for i := len(e.attrs) - 1; i >= 0; i-- {
		if e.attrs[i].Key == key {
			return e.attrs[i].Value, true
		}
	}

	return slog.Value{}, false
}

// derive returns a copy of e that remembers the sentinel it came from.
func (e *Error) derive() *Error {
	d := *e
	if d.base == nil {
		d.base = e
	}

	d.attrs = append([]slog.Attr(nil), e.attrs...)

	return &d
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := e.derive()
	d.attrs = append(d.attrs, attrs...)

	return d
}

// At returns a copy of the error located at pos.
func (e *Error) At(pos Position) *Error {
	d := e.derive()
	d.pos = pos

	return d
}

// Detailf returns a copy of the error with a formatted detail message.
func (e *Error) Detailf(format string, args ...any) *Error {
	d := e.derive()
	d.detail = fmt.Sprintf(format, args...)

	return d
}

// ClassOf returns the [Class] of the first [*Error] in err's chain.
func ClassOf(err error) Class {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.class
	}

	return ClassNone
}

// Snippet renders the source line containing the error position followed by
// a caret under the offending column. It returns "" when the error has no
// position or the position lies outside source.
func (e *Error) Snippet(source string) string {
	if !e.pos.Valid() || e.pos.Offset > len(source) {
		return ""
	}

	start := strings.LastIndexByte(source[:e.pos.Offset], '\n') + 1

	end := strings.IndexByte(source[start:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += start
	}

	line := strings.TrimSuffix(source[start:end], "\r")
	num := strconv.Itoa(e.pos.Line)

	var buf strings.Builder

	buf.WriteString("  ")
	buf.WriteString(num)
	buf.WriteString(" | ")
	buf.WriteString(line)
	buf.WriteByte('\n')

	// 2 leading spaces + " | " (3 chars)
	buf.WriteString(strings.Repeat(" ", len(num)+5))

	// Keep tabs so the caret lines up however the terminal expands them.
	for _, c := range []byte(source[start:e.pos.Offset]) {
		if c == '\t' {
			buf.WriteByte('\t')
		} else {
			buf.WriteByte(' ')
		}
	}

	buf.WriteString("^\n")

	return buf.String()
}
