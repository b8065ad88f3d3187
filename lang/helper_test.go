package lang

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func constant(v Value) HelperFunc {
	return func(context.Context, []Value) (Value, error) { return v, nil }
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.RegisterFunc("one", constant(Number(1))); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := r.RegisterFunc("one", constant(Number(2))); !errors.Is(err, ErrDuplicateHelper) {
		t.Errorf("duplicate: error = %v, want ErrDuplicateHelper", err)
	}

	for _, name := range []string{"", "1x", "a-b", "if", "not"} {
		if err := r.RegisterFunc(name, constant(None())); err == nil {
			t.Errorf("registered invalid name %q", name)
		}
	}

	r.Seal()

	if err := r.RegisterFunc("two", constant(Number(2))); !errors.Is(err, ErrRegistrySealed) {
		t.Errorf("sealed: error = %v, want ErrRegistrySealed", err)
	}

	if got := r.Names(); !slices.Equal(got, []string{"one"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestRegistry_Invoke(t *testing.T) {
	r := NewRegistry()
	cause := errors.New("boom")

	_ = r.RegisterFunc("fail", func(context.Context, []Value) (Value, error) {
		return None(), cause
	})
	_ = r.RegisterFunc("first", func(_ context.Context, args []Value) (Value, error) {
		return args[0], nil
	})

	v, err := r.Invoke(t.Context(), "first", []Value{String("x")})
	if err != nil || !v.Equal(String("x")) {
		t.Errorf("first = %s, %v", v.Quote(), err)
	}

	_, err = r.Invoke(t.Context(), "fail", nil)
	if !errors.Is(err, ErrHelper) || !errors.Is(err, cause) {
		t.Errorf("fail: error = %v, want ErrHelper wrapping cause", err)
	}

	if err.Error() != "helper error: fail: boom" {
		t.Errorf("message = %q", err.Error())
	}

	_, err = r.Invoke(t.Context(), "nope", nil)
	if !errors.Is(err, ErrUnknownHelper) {
		t.Errorf("nope: error = %v, want ErrUnknownHelper", err)
	}

	if ClassOf(err) != ClassEval {
		t.Errorf("class = %v, want eval", ClassOf(err))
	}
}
