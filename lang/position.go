package lang

import (
	"log/slog"
	"strconv"
)

// Position identifies a location in a document.
// Line and Column are 1-based; Offset is the 0-based byte offset.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Valid reports whether p refers to a location.
func (p Position) Valid() bool { return p.Line > 0 }

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	)
}

// origin is the position of the first byte of a document.
var origin = Position{Offset: 0, Line: 1, Column: 1}
