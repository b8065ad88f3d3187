package lang

import (
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Lexer produces tokens from a section body on demand.
//
// A Lexer is not restartable: once it returns an error, every later call to
// [Lexer.Next] returns the same error.
type Lexer struct {
	src      string
	end      int
	pos      Position
	tabWidth int
	err      error
}

// NewLexer returns a Lexer over the whole of src.
func NewLexer(src string, opts ...Option) *Lexer {
	o := makeOptions(opts...)

	return newLexer(src, origin, len(src), o.tabWidth)
}

// newLexer returns a Lexer over src[start.Offset:end] whose positions are
// reported relative to the enclosing document.
func newLexer(src string, start Position, end, tabWidth int) *Lexer {
	if tabWidth < 1 {
		tabWidth = DefaultTabWidth
	}

	return &Lexer{src: src, end: end, pos: start, tabWidth: tabWidth}
}

// All returns an iterator over the remaining tokens. Iteration stops after
// the end-of-input token or the first error.
func (l *Lexer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := l.Next()
			if !yield(tok, err) || err != nil || tok.Type == TokenEOF {
				return
			}
		}
	}
}

// Next returns the next token. At end of input it returns a [TokenEOF] token
// on every call.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	tok, err := l.scan()
	if err != nil {
		l.err = err

		return Token{}, err
	}

	return tok, nil
}

func (l *Lexer) fail(pos Position, found string, format string, args ...any) error {
	return ErrLex.At(pos).Detailf(format, args...).With(slog.String("found", found))
}

func (l *Lexer) eof() bool { return l.pos.Offset >= l.end }

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.src[l.pos.Offset]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos.Offset+n >= l.end {
		return 0
	}

	return l.src[l.pos.Offset+n]
}

func (l *Lexer) hasPrefix(s string) bool {
	return l.end-l.pos.Offset >= len(s) &&
		l.src[l.pos.Offset:l.pos.Offset+len(s)] == s
}

// advance consumes one byte, or a CRLF pair, updating line and column.
func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	c := l.src[l.pos.Offset]
	l.pos.Offset++

	switch {
	case c == '\r':
		if !l.eof() && l.src[l.pos.Offset] == '\n' {
			l.pos.Offset++
		}

		l.pos.Line++
		l.pos.Column = 1

	case c == '\n':
		l.pos.Line++
		l.pos.Column = 1

	case c == '\t':
		if l.tabWidth > 1 {
			l.pos.Column = ((l.pos.Column-1)/l.tabWidth+1)*l.tabWidth + 1
		} else {
			l.pos.Column++
		}

	case c&0xc0 == 0x80:
		// UTF-8 continuation byte

	default:
		l.pos.Column++
	}
}

func (l *Lexer) advanceN(n int) {
	for range n {
		l.advance()
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		switch c := l.peek(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()

		case c == '#':
			for !l.eof() && l.peek() != '\n' && l.peek() != '\r' {
				l.advance()
			}

		default:
			return
		}
	}
}

func (l *Lexer) scan() (Token, error) {
	l.skipWhitespaceAndComments()

	start := l.pos

	if l.eof() {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	c := l.peek()

	switch {
	case c == '{' && l.peekN(1) == '{':
		return l.scanTag()

	case c == '}' && l.peekN(1) == '}':
		l.advanceN(2)

		return Token{Type: TokenTagEnd, Value: "}}", Pos: start}, nil

	case isDigit(c):
		return l.scanNumber()

	case c == '"':
		return l.scanString()

	case c == '`':
		return l.scanRawString()

	case isIdentifierStart(c):
		word := l.scanWord()
		if keywords[word] {
			return Token{Type: TokenKeyword, Value: word, Pos: start}, nil
		}

		return Token{Type: TokenIdent, Value: word, Pos: start}, nil

	case strings.IndexByte("()[],.", c) >= 0:
		l.advance()

		return Token{Type: TokenPunct, Value: string(c), Pos: start}, nil
	}

	return l.scanOperator()
}

func (l *Lexer) scanWord() string {
	start := l.pos.Offset
	for !l.eof() && isIdentifierContinue(l.peek()) {
		l.advance()
	}

	return l.src[start:l.pos.Offset]
}

// scanTag scans a block tag opener: "{{#kw", "{{/kw", or "{{else".
func (l *Lexer) scanTag() (Token, error) {
	start := l.pos

	var typ TokenType

	switch l.peekN(2) {
	case '#':
		typ = TokenOpenBlock
	case '/':
		typ = TokenCloseBlock
	default:
		if l.hasPrefix("{{else") {
			l.advanceN(len("{{else"))
			if !l.eof() && isIdentifierContinue(l.peek()) {
				word := "{{else" + l.scanWord()

				return Token{}, l.fail(start, word, "unexpected %q", word)
			}

			return Token{Type: TokenElse, Value: "else", Pos: start}, nil
		}

		return Token{}, l.fail(start, "{{",
			"unexpected %q, expected {{#, {{/ or {{else", "{{")
	}

	l.advanceN(3)

	for !l.eof() && (l.peek() == ' ' || l.peek() == '\t') {
		l.advance()
	}

	if l.eof() || !isIdentifierStart(l.peek()) {
		return Token{}, l.fail(l.pos, describeByte(l.peek(), l.eof()),
			"expected block keyword after %q", l.src[start.Offset:start.Offset+3])
	}

	return Token{Type: typ, Value: l.scanWord(), Pos: start}, nil
}

func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos

	if l.peek() == '0' && strings.IndexByte("xXoObB", l.peekN(1)) >= 0 {
		l.advanceN(2)

		for !l.eof() && isIdentifierContinue(l.peek()) {
			l.advance()
		}

		text := l.src[start.Offset:l.pos.Offset]
		if _, err := strconv.ParseInt(text, 0, 64); err != nil {
			return Token{}, l.fail(start, text, "invalid number %q", text)
		}

		return Token{Type: TokenNumber, Value: text, Pos: start}, nil
	}

	l.digits()

	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		l.digits()
	}

	if c := l.peek(); c == 'e' || c == 'E' {
		n := 1
		if s := l.peekN(1); s == '+' || s == '-' {
			n = 2
		}

		if isDigit(l.peekN(n)) {
			l.advanceN(n)
			l.digits()
		}
	}

	text := l.src[start.Offset:l.pos.Offset]

	if !l.eof() && isIdentifierContinue(l.peek()) {
		bad := text + l.scanWord()

		return Token{}, l.fail(start, bad, "invalid number %q", bad)
	}

	if _, err := parseNumber(text); err != nil {
		return Token{}, l.fail(start, text, "number %q out of range", text)
	}

	return Token{Type: TokenNumber, Value: text, Pos: start}, nil
}

func (l *Lexer) digits() {
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	l.advance()

	for {
		if l.eof() || l.peek() == '\n' || l.peek() == '\r' {
			return Token{}, l.fail(start, "end of line", "unterminated string")
		}

		c := l.peek()
		l.advance()

		if c == '\\' {
			if l.eof() {
				continue
			}

			l.advance()

			continue
		}

		if c == '"' {
			break
		}
	}

	raw := l.src[start.Offset:l.pos.Offset]

	s, err := strconv.Unquote(raw)
	if err != nil {
		return Token{}, l.fail(start, raw, "invalid string literal %s", raw)
	}

	return Token{Type: TokenString, Value: s, Pos: start}, nil
}

func (l *Lexer) scanRawString() (Token, error) {
	start := l.pos
	l.advance()

	from := l.pos.Offset

	for !l.eof() && l.peek() != '`' {
		l.advance()
	}

	if l.eof() {
		return Token{}, l.fail(start, "end of input", "unterminated raw string")
	}

	s := strings.ReplaceAll(l.src[from:l.pos.Offset], "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	l.advance()

	return Token{Type: TokenString, Value: s, Pos: start}, nil
}

func (l *Lexer) scanOperator() (Token, error) {
	start := l.pos
	c := l.peek()
	next := l.peekN(1)

	op := ""

	switch c {
	case '+', '-', '*', '/', '%':
		op = string(c)

	case '=':
		if next != '=' {
			return Token{}, l.fail(start, "=", "unexpected %q, did you mean %q", "=", "==")
		}

		op = "=="

	case '!', '<', '>':
		op = string(c)
		if next == '=' {
			op += "="
		}

	case '&', '|':
		if next != c {
			return Token{}, l.fail(start, string(c),
				"unexpected %q, did you mean %q", string(c), string([]byte{c, c}))
		}

		op = string([]byte{c, c})

	default:
		r, _ := utf8.DecodeRuneInString(l.src[l.pos.Offset:l.end])
		if r >= 0x80 || r < 0x20 || r == 0x7f {
			return Token{}, l.fail(start, string(r), "illegal character %q", r)
		}

		return Token{}, l.fail(start, string(r), "unexpected character %q", r)
	}

	l.advanceN(len(op))

	return Token{Type: TokenOperator, Value: op, Pos: start}, nil
}

func describeByte(c byte, eof bool) string {
	if eof {
		return "end of input"
	}

	return strconv.QuoteRune(rune(c))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentifierContinue(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}
