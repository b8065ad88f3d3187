package lang

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
)

// Evaluator evaluates ASTs against a [Context] using a helper [Registry].
// An Evaluator holds no per-evaluation state and may be shared.
type Evaluator struct {
	helpers *Registry
	opts    options
}

// NewEvaluator returns an Evaluator that calls helpers from r.
// A nil registry has no helpers.
func NewEvaluator(r *Registry, opts ...Option) *Evaluator {
	if r == nil {
		r = NewRegistry()
	}

	return &Evaluator{helpers: r, opts: makeOptions(opts...)}
}

// Evaluate evaluates root with c and the helpers in r.
func Evaluate(
	ctx context.Context,
	root *AST,
	c *Context,
	r *Registry,
	opts ...Option,
) (Value, error) {
	return NewEvaluator(r, opts...).Evaluate(ctx, root, c)
}

// Evaluate evaluates the body of root. The helper registry is sealed first.
// On success the scope depth of c is unchanged; on failure every scope
// pushed during evaluation has been popped.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	root *AST,
	c *Context,
) (Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if c == nil {
		c = NewContext(Strict)
	}

	e.helpers.Seal()

	ev := &evaluation{ctx: ctx, e: e, c: c}

	e.opts.logger.DebugContext(ctx, "evaluate section",
		slog.String("name", root.Name),
		slog.String("mode", c.Mode().String()))

	return ev.body(root.Body)
}

// evaluation carries the state of one call to Evaluate.
type evaluation struct {
	ctx   context.Context
	e     *Evaluator
	c     *Context
	depth int
}

// body evaluates a sequence of nodes: none yields none, one yields its
// value, and several are combined by the accumulation policy.
func (ev *evaluation) body(nodes []Node) (Value, error) {
	switch len(nodes) {
	case 0:
		return None(), nil
	case 1:
		return ev.node(nodes[0])
	}

	results := make([]Value, 0, len(nodes))

	for _, n := range nodes {
		v, err := ev.node(n)
		if err != nil {
			return None(), err
		}

		results = append(results, v)
	}

	return ev.accumulate(results), nil
}

func (ev *evaluation) accumulate(results []Value) Value {
	if ev.e.opts.accumulate == AccumulateList {
		return List(results...)
	}

	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(r.String())
	}

	return String(sb.String())
}

func (ev *evaluation) node(n Node) (Value, error) {
	ev.depth++
	defer func() { ev.depth-- }()

	if ev.depth > ev.e.opts.maxDepth {
		return None(), ErrRecursionLimit.At(n.Pos()).
			Detailf("depth %d", ev.e.opts.maxDepth).
			With(slog.Int("max_depth", ev.e.opts.maxDepth))
	}

	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *VariableRef:
		return ev.variable(n)

	case *ListLiteral:
		items := make([]Value, len(n.Items))
		for i, item := range n.Items {
			v, err := ev.node(item)
			if err != nil {
				return None(), err
			}

			items[i] = v
		}

		return List(items...), nil

	case *UnaryOp:
		return ev.unary(n)

	case *BinaryOp:
		return ev.binary(n)

	case *HelperCall:
		return ev.call(n)

	case *Block:
		if n.Kind == BlockEach {
			return ev.each(n)
		}

		return ev.cond(n)
	}

	return None(), ErrType.At(n.Pos()).Detailf("unknown node %T", n)
}

func (ev *evaluation) variable(n *VariableRef) (Value, error) {
	v, err := ev.c.Resolve(n.Path)
	if err != nil {
		return None(), locate(err, n.Pos())
	}

	ev.e.opts.logger.TraceContext(ev.ctx, "resolve variable",
		slog.String("path", strings.Join(n.Path, ".")),
		slog.String("kind", v.Kind().String()))

	return v, nil
}

func (ev *evaluation) unary(n *UnaryOp) (Value, error) {
	v, err := ev.node(n.Operand)
	if err != nil {
		return None(), err
	}

	switch n.Op {
	case "!":
		return Bool(!v.Truthy()), nil

	case "-":
		if x, ok := v.AsNumber(); ok {
			return Number(-x), nil
		}
	}

	return None(), ErrType.At(n.Pos()).
		Detailf("cannot apply unary %s to %s", n.Op, v.Kind()).
		With(slog.String("operation", n.Op), slog.String("operand", v.Kind().String()))
}

func (ev *evaluation) binary(n *BinaryOp) (Value, error) {
	left, err := ev.node(n.Left)
	if err != nil {
		return None(), err
	}

	// Logical operators short-circuit.
	switch n.Op {
	case "&&":
		if !left.Truthy() {
			return Bool(false), nil
		}

		right, err := ev.node(n.Right)
		if err != nil {
			return None(), err
		}

		return Bool(right.Truthy()), nil

	case "||":
		if left.Truthy() {
			return Bool(true), nil
		}

		right, err := ev.node(n.Right)
		if err != nil {
			return None(), err
		}

		return Bool(right.Truthy()), nil
	}

	right, err := ev.node(n.Right)
	if err != nil {
		return None(), err
	}

	v, err := applyBinary(n.Op, left, right)
	if err != nil {
		return None(), locate(err, n.Pos())
	}

	return v, nil
}

// applyBinary applies a non-logical binary operator.
func applyBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return Bool(left.Equal(right)), nil
	case "!=":
		return Bool(!left.Equal(right)), nil
	case "<", "<=", ">", ">=":
		cmp, err := Compare(left, right)
		if err != nil {
			return None(), typeError(op, left, right)
		}

		switch op {
		case "<":
			return Bool(cmp < 0), nil
		case "<=":
			return Bool(cmp <= 0), nil
		case ">":
			return Bool(cmp > 0), nil
		default:
			return Bool(cmp >= 0), nil
		}
	}

	if op == "+" && left.Kind() == right.Kind() {
		switch left.Kind() {
		case KindString:
			return String(left.s + right.s), nil
		case KindList:
			return List(slices.Concat(left.list, right.list)...), nil
		}
	}

	x, lok := left.AsNumber()
	y, rok := right.AsNumber()

	if !lok || !rok {
		return None(), typeError(op, left, right)
	}

	switch op {
	case "+":
		return Number(x + y), nil
	case "-":
		return Number(x - y), nil
	case "*":
		return Number(x * y), nil
	case "/":
		if y == 0 {
			return None(), ErrDivisionByZero.Detailf("%s / 0", formatNumber(x))
		}

		return Number(x / y), nil
	case "%":
		if y == 0 {
			return None(), ErrDivisionByZero.Detailf("%s %% 0", formatNumber(x))
		}

		return Number(math.Mod(x, y)), nil
	}

	return None(), typeError(op, left, right)
}

func typeError(op string, left, right Value) error {
	return ErrType.
		Detailf("cannot apply %s to %s and %s", op, left.Kind(), right.Kind()).
		With(
			slog.String("operation", op),
			slog.String("left", left.Kind().String()),
			slog.String("right", right.Kind().String()),
		)
}

// Compare orders two numbers, two strings, or two booleans (false < true).
// Other combinations are a type error.
func Compare(a, b Value) (int, error) {
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case KindNumber:
			switch {
			case a.n < b.n:
				return -1, nil
			case a.n > b.n:
				return 1, nil
			default:
				return 0, nil
			}

		case KindString:
			return strings.Compare(a.s, b.s), nil

		case KindBool:
			switch {
			case a.b == b.b:
				return 0, nil
			case b.b:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}

	return 0, typeError("compare", a, b)
}

func (ev *evaluation) call(n *HelperCall) (Value, error) {
	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		v, err := ev.node(arg)
		if err != nil {
			return None(), err
		}

		args[i] = v
	}

	ev.e.opts.logger.TraceContext(ev.ctx, "helper invoke",
		slog.String("name", n.Name),
		slog.Int("args", len(args)))

	v, err := ev.e.helpers.Invoke(ev.ctx, n.Name, args)
	if err != nil {
		return None(), locate(err, n.Pos())
	}

	return v, nil
}

func (ev *evaluation) cond(n *Block) (Value, error) {
	c, err := ev.node(n.Cond)
	if err != nil {
		return None(), err
	}

	body := n.Else
	if c.Truthy() {
		body = n.Body
	} else if body == nil {
		return None(), nil
	}

	var v Value

	err = ev.c.WithScope(nil, func() error {
		ev.e.opts.logger.TraceContext(ev.ctx, "scope push",
			slog.Int("depth", ev.c.Depth()))

		v, err = ev.body(body)

		return err
	})
	if err != nil {
		return None(), err
	}

	return v, nil
}

func (ev *evaluation) each(n *Block) (Value, error) {
	iterable, err := ev.node(n.Cond)
	if err != nil {
		return None(), err
	}

	type binding struct{ item, index Value }

	var bindings []binding

	switch iterable.Kind() {
	case KindList:
		for i, item := range iterable.list {
			bindings = append(bindings, binding{item, Number(float64(i))})
		}

	case KindMap:
		for _, key := range slices.Sorted(maps.Keys(iterable.m)) {
			bindings = append(bindings, binding{iterable.m[key], String(key)})
		}

	default:
		return None(), ErrType.At(n.Cond.Pos()).
			Detailf("cannot iterate over %s", iterable.Kind()).
			With(slog.String("operation", "each"),
				slog.String("operand", iterable.Kind().String()))
	}

	if len(bindings) == 0 && n.Else != nil {
		return ev.body(n.Else)
	}

	results := make([]Value, 0, len(bindings))

	for _, b := range bindings {
		if err := ev.ctx.Err(); err != nil {
			return None(), err
		}

		scope := Scope{n.ItemName: b.item, n.IndexName: b.index}

		err := ev.c.WithScope(scope, func() error {
			ev.e.opts.logger.TraceContext(ev.ctx, "scope push",
				slog.Int("depth", ev.c.Depth()))

			v, err := ev.body(n.Body)
			if err != nil {
				return err
			}

			results = append(results, v)

			return nil
		})
		if err != nil {
			return None(), err
		}
	}

	return ev.accumulate(results), nil
}

// locate attaches pos to engine errors that do not yet carry a position.
func locate(err error, pos Position) error {
	ee, ok := err.(*Error)
	if !ok {
		return err
	}

	if _, has := ee.Position(); has {
		return err
	}

	return ee.At(pos)
}
