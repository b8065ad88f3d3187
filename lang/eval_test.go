package lang

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func eval(t *testing.T, src string, c *Context, opts ...Option) (Value, error) {
	t.Helper()

	ast, err := Parse(t.Context(), src, opts...)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}

	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("builtins: %v", err)
	}

	return Evaluate(t.Context(), ast, c, r, opts...)
}

func TestEvaluate_Expressions(t *testing.T) {
	c := NewContext(Strict, Scope{
		"n":    Number(10),
		"name": String("hb"),
		"xs":   List(Number(1), Number(2), Number(3)),
		"user": Map(map[string]Value{"name": String("ada")}),
	})

	tests := []struct {
		input string
		want  Value
	}{
		{"42", Number(42)},
		{"0e5 + 0x10", Number(16)},
		{"0E1", Number(0)},
		{"40 + 2", Number(42)},
		{"1 + 2 * 3", Number(7)},
		{"(1 + 2) * 3", Number(9)},
		{"7 % 4 - -1", Number(4)},
		{"n / 4", Number(2.5)},
		{`"a" + "b"`, String("ab")},
		{"[1] + [2, 3]", List(Number(1), Number(2), Number(3))},
		{"1 == 1", Bool(true)},
		{`1 == "1"`, Bool(false)},
		{"none == none", Bool(true)},
		{`"abc" < "abd"`, Bool(true)},
		{"n >= 10 and n < 11", Bool(true)},
		{"!0", Bool(true)},
		{"not name", Bool(false)},
		{"0 || xs", Bool(true)},
		{"user.name", String("ada")},
		{"abs(-3) + max(xs)", Number(6)},
		{"true", Bool(true)},
		{"none", None()},
		{"", None()},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := eval(t, tt.input, c)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got.Quote(), tt.want.Quote())
			}
		})
	}
}

func TestEvaluate_ShortCircuit(t *testing.T) {
	c := NewContext(Strict)

	// The undefined right operand is never evaluated.
	for _, src := range []string{"false && missing", "true || missing"} {
		if _, err := eval(t, src, c); err != nil {
			t.Errorf("%s: %v", src, err)
		}
	}

	if _, err := eval(t, "true && missing", c); !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("true && missing: error = %v", err)
	}

	// A helper with a side effect is never called either.
	calls := 0

	r := NewRegistry()
	if err := r.RegisterFunc("touch", func(context.Context, []Value) (Value, error) {
		calls++

		return Bool(true), nil
	}); err != nil {
		t.Fatal(err)
	}

	for _, src := range []string{"false && touch()", "true || touch()", "false and touch()"} {
		ast, err := Parse(t.Context(), src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}

		if _, err := Evaluate(t.Context(), ast, c, r); err != nil {
			t.Errorf("%s: %v", src, err)
		}
	}

	if calls != 0 {
		t.Errorf("touch called %d times, want 0", calls)
	}
}

func TestEvaluate_BlockScopes(t *testing.T) {
	c := NewContext(Strict)

	var depths []int

	r := NewRegistry()
	if err := r.RegisterFunc("depth", func(context.Context, []Value) (Value, error) {
		depths = append(depths, c.Depth())

		return None(), nil
	}); err != nil {
		t.Fatal(err)
	}

	src := `depth() {{#if true}} depth() {{/if}} {{#if false}}{{else}} depth() {{/if}}` +
		` {{#if false}}{{else if true}} depth() {{/if}} {{#each [1]}} depth() {{/each}}`

	ast, err := Parse(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Evaluate(t.Context(), ast, c, r); err != nil {
		t.Fatal(err)
	}

	want := []int{1, 2, 2, 3, 2}
	if !slices.Equal(depths, want) {
		t.Errorf("depths = %v, want %v", depths, want)
	}

	if c.Depth() != 1 {
		t.Errorf("depth after evaluation = %d, want 1", c.Depth())
	}
}

func TestEvaluate_Blocks(t *testing.T) {
	c := NewContext(Strict, Scope{
		"xs":    List(Number(1), Number(2), Number(3)),
		"empty": List(),
		"flags": Map(map[string]Value{"b": Bool(false), "a": Bool(true)}),
	})

	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"if true", `{{#if 1}} "yes" {{else}} "no" {{/if}}`, String("yes")},
		{"if false", `{{#if 0}} "yes" {{else}} "no" {{/if}}`, String("no")},
		{"if false without else", `{{#if 0}} "yes" {{/if}}`, None()},
		{"else if", `{{#if 0}} 1 {{else if xs}} 2 {{else}} 3 {{/if}}`, Number(2)},
		{"each item", "{{#each xs}} item {{/each}}", String("123")},
		{"each index", `{{#each xs}} index ":" item " " {{/each}}`, String("0:1 1:2 2:3 ")},
		{"each as", "{{#each xs as x}} x * 2 {{/each}}", String("246")},
		{"each map", "{{#each flags as v, k}} k {{/each}}", String("ab")},
		{"each empty", "{{#each empty}} item {{/each}}", String("")},
		{"each else", `{{#each empty}} item {{else}} "none" {{/each}}`, String("none")},
		{"nested", "{{#each xs}}{{#if item % 2}} item {{/if}}{{/each}}", String("13")},
		{"sequence", `"a" 1 none true`, String("a1true")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval(t, tt.input, c)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got.Quote(), tt.want.Quote())
			}

			if c.Depth() != 1 {
				t.Errorf("scope depth = %d after evaluation", c.Depth())
			}
		})
	}
}

func TestEvaluate_AccumulateList(t *testing.T) {
	c := NewContext(Strict, Scope{"xs": List(Number(1), Number(2))})

	got, err := eval(t, "{{#each xs}} item * 10 {{/each}}", c,
		WithAccumulation(AccumulateList))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if want := List(Number(10), Number(20)); !got.Equal(want) {
		t.Errorf("got %s, want %s", got.Quote(), want.Quote())
	}

	got, err = eval(t, `1 "a"`, c, WithAccumulation(AccumulateList))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if want := List(Number(1), String("a")); !got.Equal(want) {
		t.Errorf("got %s, want %s", got.Quote(), want.Quote())
	}
}

func TestEvaluate_Errors(t *testing.T) {
	c := NewContext(Strict, Scope{"xs": List(Number(1), Number(2))})

	tests := []struct {
		name    string
		input   string
		target  error
		message string
	}{
		{"undefined", "1 + missing", ErrUndefinedVariable, "undefined variable: missing at 1:5"},
		{"type", `1 + "a"`, ErrType, "type error: cannot apply + to number and string at 1:3"},
		{"ordering", "[1] < [2]", ErrType, "type error: cannot apply < to list and list at 1:5"},
		{"negate string", `-"a"`, ErrType, "type error: cannot apply unary - to string at 1:1"},
		{"division", "1 / 0", ErrDivisionByZero, "division by zero: 1 / 0 at 1:3"},
		{"modulo", "1 % 0", ErrDivisionByZero, "division by zero: 1 % 0 at 1:3"},
		{"unknown helper", "nope(1)", ErrUnknownHelper, "unknown helper: nope at 1:1"},
		{"helper failure", `abs("x")`, ErrHelper, "helper error: abs: invalid argument: argument 1: expected number, found string at 1:1"},
		{"each non-list", "{{#each 3}}{{/each}}", ErrType, "type error: cannot iterate over number at 1:9"},
		{"error inside each", "{{#each xs}} item + missing {{/each}}", ErrUndefinedVariable, "undefined variable: missing at 1:21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval(t, tt.input, c)
			if !errors.Is(err, tt.target) {
				t.Fatalf("error = %v, want %v", err, tt.target)
			}

			if err.Error() != tt.message {
				t.Errorf("message = %q\nwant      %q", err.Error(), tt.message)
			}

			if ClassOf(err) != ClassEval {
				t.Errorf("class = %v, want eval", ClassOf(err))
			}

			if c.Depth() != 1 {
				t.Errorf("scope depth = %d after failure", c.Depth())
			}
		})
	}
}

func TestEvaluate_RecursionLimit(t *testing.T) {
	var n Node = &Literal{Value: Number(1), Start: origin}
	for range 300 {
		n = &UnaryOp{Op: "-", Operand: n, Start: origin}
	}

	root := &AST{Body: []Node{n}, Start: origin}

	_, err := Evaluate(t.Context(), root, nil, nil)
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("default depth: error = %v, want ErrRecursionLimit", err)
	}

	v, err := Evaluate(t.Context(), root, nil, nil, WithMaxDepth(400))
	if err != nil {
		t.Fatalf("raised depth: %v", err)
	}

	if !v.Equal(Number(1)) {
		t.Errorf("got %s, want 1", v.Quote())
	}
}

func TestEvaluate_SealsRegistry(t *testing.T) {
	r := NewRegistry()

	ast, err := Parse(t.Context(), "1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Evaluate(t.Context(), ast, nil, r); err != nil {
		t.Fatal(err)
	}

	if !r.Sealed() {
		t.Error("registry not sealed after evaluation")
	}
}

func TestEvaluate_ConcurrentSharedAST(t *testing.T) {
	ast, err := Parse(t.Context(), "{{#each xs}} item {{/each}}")
	if err != nil {
		t.Fatal(err)
	}

	ev := NewEvaluator(nil)
	errs := make(chan error, 8)

	for i := range 8 {
		go func() {
			c := NewContext(Strict, Scope{"xs": List(Number(float64(i)))})

			v, err := ev.Evaluate(context.Background(), ast, c)
			if err == nil && v.String() != Number(float64(i)).String() {
				err = errors.New("unexpected result " + v.Quote())
			}

			errs <- err
		}()
	}

	for range 8 {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
