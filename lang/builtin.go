package lang

import (
	"context"
	"math"
)

// errArgument reports a helper called with unusable arguments.
var errArgument = NewError("invalid argument")

// RegisterBuiltins registers the built-in helpers available in this build
// into r. The arithmetic helpers are always present; the remaining helpers
// are omitted from builds with the "minimal" tag.
func RegisterBuiltins(r *Registry) error {
	for name, fn := range arithmeticHelpers {
		if err := r.RegisterFunc(name, fn); err != nil {
			return err
		}
	}

	return registerExtended(r)
}

var arithmeticHelpers = map[string]HelperFunc{
	"abs":   unaryMath(math.Abs),
	"floor": unaryMath(math.Floor),
	"ceil":  unaryMath(math.Ceil),
	"min":   fold(math.Min),
	"max":   fold(math.Max),
	"sum":   fold(func(a, b float64) float64 { return a + b }),
	"round": helperRound,
	"pow":   helperPow,
}

func unaryMath(fn func(float64) float64) HelperFunc {
	return func(_ context.Context, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return None(), err
		}

		x, err := numberArg(args, 0)
		if err != nil {
			return None(), err
		}

		return Number(fn(x)), nil
	}
}

// fold combines numbers given either as arguments or as a single list.
func fold(fn func(a, b float64) float64) HelperFunc {
	return func(_ context.Context, args []Value) (Value, error) {
		if len(args) == 1 {
			if items, ok := args[0].AsList(); ok {
				args = items
			}
		}

		if len(args) == 0 {
			return None(), errArgument.Detailf("expected at least 1 number")
		}

		acc, err := numberArg(args, 0)
		if err != nil {
			return None(), err
		}

		for i := 1; i < len(args); i++ {
			x, err := numberArg(args, i)
			if err != nil {
				return None(), err
			}

			acc = fn(acc, x)
		}

		return Number(acc), nil
	}
}

func helperRound(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, 2); err != nil {
		return None(), err
	}

	x, err := numberArg(args, 0)
	if err != nil {
		return None(), err
	}

	places := 0.0
	if len(args) == 2 {
		if places, err = numberArg(args, 1); err != nil {
			return None(), err
		}
	}

	scale := math.Pow(10, math.Trunc(places))

	return Number(math.Round(x*scale) / scale), nil
}

func helperPow(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 2, 2); err != nil {
		return None(), err
	}

	x, err := numberArg(args, 0)
	if err != nil {
		return None(), err
	}

	y, err := numberArg(args, 1)
	if err != nil {
		return None(), err
	}

	return Number(math.Pow(x, y)), nil
}

// arity checks that len(args) is within [lo, hi]; hi < 0 means unbounded.
func arity(args []Value, lo, hi int) error {
	n := len(args)

	switch {
	case n < lo:
		return errArgument.Detailf("expected at least %d arguments, got %d", lo, n)
	case hi >= 0 && n > hi:
		return errArgument.Detailf("expected at most %d arguments, got %d", hi, n)
	}

	return nil
}

func numberArg(args []Value, i int) (float64, error) {
	x, ok := args[i].AsNumber()
	if !ok {
		return 0, errArgument.Detailf("argument %d: expected number, found %s",
			i+1, args[i].Kind())
	}

	return x, nil
}

func stringArg(args []Value, i int) (string, error) {
	s, ok := args[i].AsString()
	if !ok {
		return "", errArgument.Detailf("argument %d: expected string, found %s",
			i+1, args[i].Kind())
	}

	return s, nil
}

func listArg(args []Value, i int) ([]Value, error) {
	items, ok := args[i].AsList()
	if !ok {
		return nil, errArgument.Detailf("argument %d: expected list, found %s",
			i+1, args[i].Kind())
	}

	return items, nil
}
