package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// Default names bound by each blocks without an "as" clause.
const (
	DefaultItemName  = "item"
	DefaultIndexName = "index"
)

// Parse parses src as a single section body named "".
func Parse(ctx context.Context, src string, opts ...Option) (*AST, error) {
	return parseBody(ctx, "", src, origin, len(src), makeOptions(opts...))
}

// parseBody parses src[start.Offset:end] as the body of the named section.
func parseBody(
	ctx context.Context,
	name, src string,
	start Position,
	end int,
	o options,
) (*AST, error) {
	p := &parser{
		ctx:  ctx,
		lex:  newLexer(src, start, end, o.tabWidth),
		opts: o,
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	body, err := p.parseItems()
	if err != nil {
		return nil, err
	}

	if p.tok.Type != TokenEOF {
		return nil, p.unexpected("expression", "end of input")
	}

	o.logger.DebugContext(ctx, "parse section",
		slog.String("name", name),
		slog.Int("nodes", len(body)))

	return &AST{Name: name, Body: body, Start: start}, nil
}

// parser holds the parser state.
type parser struct {
	ctx   context.Context
	lex   *Lexer
	opts  options
	tok   Token
	depth int
}

func (p *parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	p.opts.logger.TraceContext(p.ctx, "lex token", slog.Any("token", tok))

	return nil
}

func (p *parser) unexpected(expected ...string) error {
	exp := strings.Join(expected, " or ")

	return ErrParse.At(p.tok.Pos).
		Detailf("expected %s, found %s", exp, p.tok).
		With(slog.String("expected", exp), slog.String("found", p.tok.String()))
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.opts.maxDepth {
		return ErrParse.At(p.tok.Pos).
			Detailf("nesting too deep").
			With(slog.Int("max_depth", p.opts.maxDepth))
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) expect(typ TokenType, value string) error {
	if !p.tok.Is(typ, value) {
		want := Token{Type: typ, Value: value}

		return p.unexpected(want.String())
	}

	return p.next()
}

// parseItems parses items until end of input, "{{else", or a close tag.
func (p *parser) parseItems() ([]Node, error) {
	var items []Node

	for {
		switch p.tok.Type {
		case TokenEOF, TokenElse, TokenCloseBlock:
			return items, nil
		}

		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}
}

func (p *parser) parseItem() (Node, error) {
	if p.tok.Type != TokenOpenBlock {
		return p.parseExpr()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	open := p.tok

	var (
		block *Block
		err   error
	)

	switch open.Value {
	case "if":
		if err = p.next(); err != nil {
			return nil, err
		}

		block, err = p.parseIf(open.Pos)

	case "each":
		if err = p.next(); err != nil {
			return nil, err
		}

		block, err = p.parseEach(open.Pos)

	default:
		return nil, p.unexpected("{{#if", "{{#each")
	}

	if err != nil {
		return nil, err
	}

	if p.tok.Type != TokenCloseBlock || p.tok.Value != open.Value {
		return nil, p.unexpected("{{/" + open.Value)
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	if err := p.expect(TokenTagEnd, "}}"); err != nil {
		return nil, err
	}

	return block, nil
}

// parseIf parses a condition, its body, and any else branch. The closing
// tag is left for the caller so that "else if" chains share it.
func (p *parser) parseIf(start Position) (*Block, error) {
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenTagEnd, "}}"); err != nil {
		return nil, err
	}

	body, err := p.parseItems()
	if err != nil {
		return nil, err
	}

	block := &Block{Kind: BlockIf, Cond: cond, Body: body, Start: start}

	if p.tok.Type != TokenElse {
		return block, nil
	}

	elsePos := p.tok.Pos

	if err := p.next(); err != nil {
		return nil, err
	}

	if p.tok.Is(TokenKeyword, "if") {
		if err := p.next(); err != nil {
			return nil, err
		}

		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		nested, err := p.parseIf(elsePos)
		if err != nil {
			return nil, err
		}

		block.Else = []Node{nested}

		return block, nil
	}

	if err := p.expect(TokenTagEnd, "}}"); err != nil {
		return nil, err
	}

	if block.Else, err = p.parseItems(); err != nil {
		return nil, err
	}

	if block.Else == nil {
		block.Else = []Node{}
	}

	return block, nil
}

func (p *parser) parseEach(start Position) (*Block, error) {
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	block := &Block{
		Kind:      BlockEach,
		Cond:      iter,
		ItemName:  DefaultItemName,
		IndexName: DefaultIndexName,
		Start:     start,
	}

	if p.tok.Is(TokenKeyword, "as") {
		if err := p.next(); err != nil {
			return nil, err
		}

		if p.tok.Type != TokenIdent {
			return nil, p.unexpected("identifier")
		}

		block.ItemName = p.tok.Value

		if err := p.next(); err != nil {
			return nil, err
		}

		if p.tok.Is(TokenPunct, ",") {
			if err := p.next(); err != nil {
				return nil, err
			}

			if p.tok.Type != TokenIdent {
				return nil, p.unexpected("identifier")
			}

			block.IndexName = p.tok.Value

			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}

	if err := p.expect(TokenTagEnd, "}}"); err != nil {
		return nil, err
	}

	if block.Body, err = p.parseItems(); err != nil {
		return nil, err
	}

	if p.tok.Type == TokenElse {
		if err := p.next(); err != nil {
			return nil, err
		}

		if err := p.expect(TokenTagEnd, "}}"); err != nil {
			return nil, err
		}

		if block.Else, err = p.parseItems(); err != nil {
			return nil, err
		}

		if block.Else == nil {
			block.Else = []Node{}
		}
	}

	return block, nil
}

func (p *parser) parseExpr() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.parseOr()
}

// binary parses a left-associative chain of operators from ops, with
// operands parsed by operand. Keyword spellings map to their symbols.
func (p *parser) binary(
	operand func() (Node, error),
	ops map[string]string,
) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		if p.tok.Type != TokenOperator && p.tok.Type != TokenKeyword {
			return left, nil
		}

		op, ok := ops[p.tok.Value]
		if !ok {
			return left, nil
		}

		pos := p.tok.Pos

		if err := p.next(); err != nil {
			return nil, err
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &BinaryOp{Op: op, Left: left, Right: right, Start: pos}
	}
}

var (
	orOps  = map[string]string{"||": "||", "or": "||"}
	andOps = map[string]string{"&&": "&&", "and": "&&"}
	cmpOps = map[string]string{
		"==": "==", "!=": "!=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	}
	addOps = map[string]string{"+": "+", "-": "-"}
	mulOps = map[string]string{"*": "*", "/": "/", "%": "%"}
)

func (p *parser) parseOr() (Node, error)  { return p.binary(p.parseAnd, orOps) }
func (p *parser) parseAnd() (Node, error) { return p.binary(p.parseCompare, andOps) }

func (p *parser) parseCompare() (Node, error) {
	return p.binary(p.parseAdditive, cmpOps)
}

func (p *parser) parseAdditive() (Node, error) {
	return p.binary(p.parseMultiplicative, addOps)
}

func (p *parser) parseMultiplicative() (Node, error) {
	return p.binary(p.parseUnary, mulOps)
}

func (p *parser) parseUnary() (Node, error) {
	var op string

	switch {
	case p.tok.Is(TokenOperator, "-"):
		op = "-"
	case p.tok.Is(TokenOperator, "!"), p.tok.Is(TokenKeyword, "not"):
		op = "!"
	default:
		return p.parsePrimary()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	pos := p.tok.Pos

	if err := p.next(); err != nil {
		return nil, err
	}

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnaryOp{Op: op, Operand: operand, Start: pos}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.tok

	switch tok.Type {
	case TokenNumber:
		n, err := parseNumber(tok.Value)
		if err != nil {
			return nil, ErrParse.At(tok.Pos).Detailf("invalid number %q", tok.Value)
		}

		return p.literal(Number(n), tok.Pos)

	case TokenString:
		return p.literal(String(tok.Value), tok.Pos)

	case TokenKeyword:
		switch tok.Value {
		case "true":
			return p.literal(Bool(true), tok.Pos)
		case "false":
			return p.literal(Bool(false), tok.Pos)
		case "none":
			return p.literal(None(), tok.Pos)
		}

	case TokenIdent:
		if err := p.next(); err != nil {
			return nil, err
		}

		if p.tok.Is(TokenPunct, "(") {
			args, err := p.parseList(")")
			if err != nil {
				return nil, err
			}

			return &HelperCall{Name: tok.Value, Args: args, Start: tok.Pos}, nil
		}

		path := []string{tok.Value}

		for p.tok.Is(TokenPunct, ".") {
			if err := p.next(); err != nil {
				return nil, err
			}

			if p.tok.Type != TokenIdent && p.tok.Type != TokenKeyword {
				return nil, p.unexpected("identifier")
			}

			path = append(path, p.tok.Value)

			if err := p.next(); err != nil {
				return nil, err
			}
		}

		return &VariableRef{Path: path, Start: tok.Pos}, nil

	case TokenPunct:
		switch tok.Value {
		case "(":
			if err := p.next(); err != nil {
				return nil, err
			}

			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if err := p.expect(TokenPunct, ")"); err != nil {
				return nil, err
			}

			return expr, nil

		case "[":
			items, err := p.parseList("]")
			if err != nil {
				return nil, err
			}

			return &ListLiteral{Items: items, Start: tok.Pos}, nil
		}
	}

	return nil, p.unexpected("expression")
}

func (p *parser) literal(v Value, pos Position) (Node, error) {
	if err := p.next(); err != nil {
		return nil, err
	}

	return &Literal{Value: v, Start: pos}, nil
}

// parseList parses comma-separated expressions after the current opening
// token up to and including closer. A trailing comma is allowed.
func (p *parser) parseList(closer string) ([]Node, error) {
	if err := p.next(); err != nil {
		return nil, err
	}

	items := []Node{}

	for !p.tok.Is(TokenPunct, closer) {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		if p.tok.Is(TokenPunct, ",") {
			if err := p.next(); err != nil {
				return nil, err
			}

			continue
		}

		if !p.tok.Is(TokenPunct, closer) {
			return nil, p.unexpected(strconv.Quote(","), strconv.Quote(closer))
		}
	}

	return items, p.next()
}

// parseNumber converts number literal text to a float64.
func parseNumber(text string) (float64, error) {
	if len(text) > 1 && text[0] == '0' && strings.IndexByte("xXoObB", text[1]) >= 0 {
		n, err := strconv.ParseInt(text, 0, 64)

		return float64(n), err
	}

	return strconv.ParseFloat(text, 64)
}
