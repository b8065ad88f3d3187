package lang

import (
	"log/slog"
	"strconv"
)

// TokenType identifies the lexical category of a [Token].
type TokenType int

const (
	TokenEOF        TokenType = iota // end of input
	TokenNumber                      // number literal
	TokenString                      // string literal
	TokenIdent                       // identifier
	TokenKeyword                     // reserved word
	TokenOperator                    // operator symbol
	TokenPunct                       // punctuation
	TokenOpenBlock                   // {{#if, {{#each
	TokenElse                        // {{else
	TokenCloseBlock                  // {{/if, {{/each
	TokenTagEnd                      // }}
)

var tokenTypeName = map[TokenType]string{
	TokenEOF:        "end of input",
	TokenNumber:     "number",
	TokenString:     "string",
	TokenIdent:      "identifier",
	TokenKeyword:    "keyword",
	TokenOperator:   "operator",
	TokenPunct:      "punctuation",
	TokenOpenBlock:  "block open",
	TokenElse:       "else",
	TokenCloseBlock: "block close",
	TokenTagEnd:     "tag end",
}

func (t TokenType) String() string {
	if s, ok := tokenTypeName[t]; ok {
		return s
	}

	return "TokenType(" + strconv.Itoa(int(t)) + ")"
}

// keywords are identifiers reserved by the language.
var keywords = map[string]bool{
	"true":  true,
	"false": true,
	"none":  true,
	"and":   true,
	"or":    true,
	"not":   true,
	"as":    true,
	"if":    true,
}

// Token is a single lexical unit.
//
// Value holds the token text: the decoded contents for strings, the keyword
// for block tags, and the literal source for everything else.
type Token struct {
	Value string
	Pos   Position
	Type  TokenType
}

// IsLiteral reports whether the token is a number or string literal.
func (t Token) IsLiteral() bool {
	return t.Type == TokenNumber || t.Type == TokenString
}

// Is reports whether the token has the given type and value.
func (t Token) Is(typ TokenType, value string) bool {
	return t.Type == typ && t.Value == value
}

// String describes the token the way it appears in the source, for use in
// error messages.
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return strconv.Quote(t.Value)
	case TokenOpenBlock:
		return "{{#" + t.Value
	case TokenElse:
		return "{{else"
	case TokenCloseBlock:
		return "{{/" + t.Value
	case TokenTagEnd:
		return "}}"
	default:
		return t.Value
	}
}

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", t.Type.String()),
		slog.String("value", t.Value),
		slog.String("pos", t.Pos.String()),
	)
}
