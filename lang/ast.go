package lang

import (
	"fmt"
	"io"
	"strings"
)

// Node is an element of a parsed section body.
//
// The concrete node types are [*Literal], [*VariableRef], [*BinaryOp],
// [*UnaryOp], [*HelperCall], [*ListLiteral], and [*Block].
type Node interface {
	Pos() Position
	node()
}

// Literal is a constant value.
type Literal struct {
	Value Value
	Start Position
}

// VariableRef is a dotted path looked up in the evaluation [Context].
type VariableRef struct {
	Path  []string
	Start Position
}

// BinaryOp applies an infix operator.
type BinaryOp struct {
	Left  Node
	Right Node
	Op    string
	Start Position
}

// UnaryOp applies a prefix operator.
type UnaryOp struct {
	Operand Node
	Op      string
	Start   Position
}

// HelperCall invokes a registered helper with evaluated arguments.
type HelperCall struct {
	Name  string
	Args  []Node
	Start Position
}

// ListLiteral builds a list from its evaluated items.
type ListLiteral struct {
	Items []Node
	Start Position
}

// BlockKind distinguishes conditional and iteration blocks.
type BlockKind int

const (
	BlockIf BlockKind = iota
	BlockEach
)

func (k BlockKind) String() string {
	if k == BlockEach {
		return "each"
	}

	return "if"
}

// Block is an if or each block.
//
// For BlockIf, Else holds the alternative body; an "else if" chain is a
// single nested BlockIf. For BlockEach, Else is evaluated when the iterable
// is empty, and ItemName and IndexName are bound in each iteration's scope.
type Block struct {
	Cond      Node
	ItemName  string
	IndexName string
	Body      []Node
	Else      []Node
	Start     Position
	Kind      BlockKind
}

func (n *Literal) Pos() Position     { return n.Start }
func (n *VariableRef) Pos() Position { return n.Start }
func (n *BinaryOp) Pos() Position    { return n.Start }
func (n *UnaryOp) Pos() Position     { return n.Start }
func (n *HelperCall) Pos() Position  { return n.Start }
func (n *ListLiteral) Pos() Position { return n.Start }
func (n *Block) Pos() Position       { return n.Start }

func (*Literal) node()     {}
func (*VariableRef) node() {}
func (*BinaryOp) node()    {}
func (*UnaryOp) node()     {}
func (*HelperCall) node()  {}
func (*ListLiteral) node() {}
func (*Block) node()       {}

// AST is the parsed body of one section. It is read-only after parsing and
// may be evaluated concurrently with independent contexts.
type AST struct {
	Name  string
	Body  []Node
	Start Position
}

// Print writes an indented tree rendering of the AST to w.
func (a *AST) Print(w io.Writer) error {
	p := &printer{w: w}

	name := a.Name
	if name == "" {
		name = "<input>"
	}

	p.line(0, "section %s", name)

	for _, n := range a.Body {
		p.node(1, n)
	}

	return p.err
}

// String returns the tree rendering produced by [AST.Print].
func (a *AST) String() string {
	var sb strings.Builder

	_ = a.Print(&sb)

	return sb.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, "%s"+format+"\n",
		append([]any{strings.Repeat("  ", depth)}, args...)...)
}

func (p *printer) node(depth int, n Node) {
	switch n := n.(type) {
	case *Literal:
		p.line(depth, "literal %s", n.Value.Quote())

	case *VariableRef:
		p.line(depth, "variable %s", strings.Join(n.Path, "."))

	case *BinaryOp:
		p.line(depth, "binary %s", n.Op)
		p.node(depth+1, n.Left)
		p.node(depth+1, n.Right)

	case *UnaryOp:
		p.line(depth, "unary %s", n.Op)
		p.node(depth+1, n.Operand)

	case *HelperCall:
		p.line(depth, "call %s", n.Name)

		for _, arg := range n.Args {
			p.node(depth+1, arg)
		}

	case *ListLiteral:
		p.line(depth, "list")

		for _, item := range n.Items {
			p.node(depth+1, item)
		}

	case *Block:
		if n.Kind == BlockEach {
			p.line(depth, "each as %s, %s", n.ItemName, n.IndexName)
		} else {
			p.line(depth, "if")
		}

		p.node(depth+1, n.Cond)
		p.line(depth+1, "then")

		for _, c := range n.Body {
			p.node(depth+2, c)
		}

		if n.Else != nil {
			p.line(depth+1, "else")

			for _, c := range n.Else {
				p.node(depth+2, c)
			}
		}
	}
}

// Tree converts the AST into nested maps and slices suitable for JSON or
// YAML encoding.
func (a *AST) Tree() map[string]any {
	return map[string]any{
		"section":  a.Name,
		"position": a.Start.String(),
		"body":     treeNodes(a.Body),
	}
}

func treeNodes(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, treeNode(n))
	}

	return out
}

func treeNode(n Node) map[string]any {
	m := map[string]any{"position": n.Pos().String()}

	switch n := n.(type) {
	case *Literal:
		m["node"] = "literal"
		m["value"] = n.Value.Native()

	case *VariableRef:
		m["node"] = "variable"
		m["path"] = strings.Join(n.Path, ".")

	case *BinaryOp:
		m["node"] = "binary"
		m["op"] = n.Op
		m["left"] = treeNode(n.Left)
		m["right"] = treeNode(n.Right)

	case *UnaryOp:
		m["node"] = "unary"
		m["op"] = n.Op
		m["operand"] = treeNode(n.Operand)

	case *HelperCall:
		m["node"] = "call"
		m["name"] = n.Name
		m["args"] = treeNodes(n.Args)

	case *ListLiteral:
		m["node"] = "list"
		m["items"] = treeNodes(n.Items)

	case *Block:
		m["node"] = n.Kind.String()
		m["condition"] = treeNode(n.Cond)
		m["body"] = treeNodes(n.Body)

		if n.Else != nil {
			m["else"] = treeNodes(n.Else)
		}

		if n.Kind == BlockEach {
			m["item"] = n.ItemName
			m["index"] = n.IndexName
		}
	}

	return m
}
