//go:build !minimal

package lang

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestBuiltins_Full(t *testing.T) {
	c := NewContext(Strict, Scope{
		"xs":   List(String("a"), String("b")),
		"m":    Map(map[string]Value{"y": Number(2), "x": Number(1)}),
		"path": String("/usr/bin"),
	})

	sep := string(os.PathListSeparator)

	tests := []struct {
		input string
		want  Value
	}{
		{`len("abc")`, Number(3)},
		{"len(xs)", Number(2)},
		{"str(12) + str(true)", String("12true")},
		{`num(" 2.5 ")`, Number(2.5)},
		{"num(true)", Number(1)},
		{"bool([])", Bool(false)},
		{`upper("ab") lower("CD") trim("  e ")`, String("ABcde")},
		{`join(xs, "-")`, String("a-b")},
		{`split("a,b", ",")`, List(String("a"), String("b"))},
		{`contains("hello", "ell")`, Bool(true)},
		{`contains(xs, "c")`, Bool(false)},
		{`contains(m, "x")`, Bool(true)},
		{`replace("aaa", "a", "b")`, String("bbb")},
		{`repeat("ab", 3)`, String("ababab")},
		{"range(3)", List(Number(0), Number(1), Number(2))},
		{"range(1, 7, 3)", List(Number(1), Number(4))},
		{"range(3, 0, -1)", List(Number(3), Number(2), Number(1))},
		{`default(none, "x")`, String("x")},
		{`default(0, "x")`, Number(0)},
		{"keys(m)", List(String("x"), String("y"))},
		{`expr("args[0] * args[1] + 1", 6, 7)`, Number(43)},
		{`expr("upper(args[0])", "hb")`, String("HB")},
		{`path_prefix(path, "/opt/bin")`, String("/opt/bin" + sep + "/usr/bin")},
		{"round(1.25, 1)", Number(1.3)},
		{"sum(1, 2, 3) + min(4, 5) + pow(2, 3)", Number(18)},
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

func TestBuiltins_FullErrors(t *testing.T) {
	c := NewContext(Strict)

	for _, input := range []string{
		"len(1)",
		`num("x")`,
		"range(1, 2, 0)",
		"range(1e9)",
		"range(pow(10, 400))",
		"range(0, 1, pow(10, 400))",
		`repeat("a", -1)`,
		`expr("(")`,
		"keys([1])",
		`join("a")`,
		"upper()",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := eval(t, input, c)
			if !errors.Is(err, ErrHelper) {
				t.Errorf("error = %v, want ErrHelper", err)
			}
		})
	}
}

func TestBuiltins_RangeBeyondFloatSpacing(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatal(err)
	}

	done := make(chan Value, 1)

	go func() {
		v, err := r.Invoke(t.Context(), "range", []Value{Number(1e17), Number(1e17 + 64)})
		if err != nil {
			t.Error(err)
		}

		done <- v
	}()

	select {
	case v := <-done:
		items, ok := v.AsList()
		if !ok || len(items) != 64 {
			t.Fatalf("range = %s, want 64 items", v.Quote())
		}

		if !items[0].Equal(Number(1e17)) {
			t.Errorf("first item = %s", items[0].Quote())
		}

	case <-time.After(3 * time.Second):
		t.Fatal("range(1e17, 1e17+64) did not return")
	}
}
