//go:build !minimal

package lang

import (
	"context"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// maxRange bounds the length of lists built by range.
const maxRange = 1 << 20

var extendedHelpers = map[string]HelperFunc{
	"len":         helperLen,
	"str":         helperStr,
	"num":         helperNum,
	"bool":        helperBool,
	"upper":       stringMap(strings.ToUpper),
	"lower":       stringMap(strings.ToLower),
	"trim":        stringMap(strings.TrimSpace),
	"join":        helperJoin,
	"split":       helperSplit,
	"contains":    helperContains,
	"replace":     helperReplace,
	"repeat":      helperRepeat,
	"range":       helperRange,
	"default":     helperDefault,
	"keys":        helperKeys,
	"expr":        helperExpr,
	"path_prefix": helperPathPrefix,
}

func registerExtended(r *Registry) error {
	for name, fn := range extendedHelpers {
		if err := r.RegisterFunc(name, fn); err != nil {
			return err
		}
	}

	return nil
}

func helperLen(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return None(), err
	}

	switch args[0].Kind() {
	case KindString, KindList, KindMap:
		return Number(float64(args[0].Len())), nil
	}

	return None(), errArgument.Detailf("len of %s", args[0].Kind())
}

func helperStr(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return None(), err
	}

	return String(args[0].String()), nil
}

func helperNum(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return None(), err
	}

	switch v := args[0]; v.Kind() {
	case KindNumber:
		return v, nil

	case KindBool:
		if b, _ := v.AsBool(); b {
			return Number(1), nil
		}

		return Number(0), nil

	case KindString:
		s, _ := v.AsString()

		n, err := parseNumber(strings.TrimSpace(s))
		if err != nil {
			return None(), errArgument.Wrap(err).Detailf("not a number %q", s)
		}

		return Number(n), nil
	}

	return None(), errArgument.Detailf("cannot convert %s to number", args[0].Kind())
}

func helperBool(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return None(), err
	}

	return Bool(args[0].Truthy()), nil
}

func stringMap(fn func(string) string) HelperFunc {
	return func(_ context.Context, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return None(), err
		}

		s, err := stringArg(args, 0)
		if err != nil {
			return None(), err
		}

		return String(fn(s)), nil
	}
}

func helperJoin(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, 2); err != nil {
		return None(), err
	}

	items, err := listArg(args, 0)
	if err != nil {
		return None(), err
	}

	sep := ""
	if len(args) == 2 {
		if sep, err = stringArg(args, 1); err != nil {
			return None(), err
		}
	}

	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}

	return String(strings.Join(parts, sep)), nil
}

func helperSplit(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 2, 2); err != nil {
		return None(), err
	}

	s, err := stringArg(args, 0)
	if err != nil {
		return None(), err
	}

	sep, err := stringArg(args, 1)
	if err != nil {
		return None(), err
	}

	parts := strings.Split(s, sep)

	items := make([]Value, len(parts))
	for i, p := range parts {
		items[i] = String(p)
	}

	return List(items...), nil
}

// helperContains tests for a substring, a list element, or a map key.
func helperContains(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 2, 2); err != nil {
		return None(), err
	}

	switch hay := args[0]; hay.Kind() {
	case KindString:
		needle, err := stringArg(args, 1)
		if err != nil {
			return None(), err
		}

		s, _ := hay.AsString()

		return Bool(strings.Contains(s, needle)), nil

	case KindList:
		items, _ := hay.AsList()

		return Bool(slices.ContainsFunc(items, args[1].Equal)), nil

	case KindMap:
		key, err := stringArg(args, 1)
		if err != nil {
			return None(), err
		}

		_, ok := hay.Property(key)

		return Bool(ok), nil
	}

	return None(), errArgument.Detailf("contains on %s", args[0].Kind())
}

func helperReplace(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 3, 3); err != nil {
		return None(), err
	}

	var s [3]string

	for i := range s {
		var err error
		if s[i], err = stringArg(args, i); err != nil {
			return None(), err
		}
	}

	return String(strings.ReplaceAll(s[0], s[1], s[2])), nil
}

func helperRepeat(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 2, 2); err != nil {
		return None(), err
	}

	s, err := stringArg(args, 0)
	if err != nil {
		return None(), err
	}

	n, err := numberArg(args, 1)
	if err != nil {
		return None(), err
	}

	if n < 0 || float64(len(s))*n > maxRange {
		return None(), errArgument.Detailf("repeat count %s out of range", formatNumber(n))
	}

	return String(strings.Repeat(s, int(n))), nil
}

// helperRange returns [0, n), [a, b), or [a, b) stepping by step.
func helperRange(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, 3); err != nil {
		return None(), err
	}

	var bounds [3]float64

	for i := range args {
		x, err := numberArg(args, i)
		if err != nil {
			return None(), err
		}

		bounds[i] = x
	}

	lo, hi, step := 0.0, bounds[0], 1.0

	switch len(args) {
	case 2:
		lo, hi = bounds[0], bounds[1]
	case 3:
		lo, hi, step = bounds[0], bounds[1], bounds[2]
	}

	for _, x := range []float64{lo, hi, step} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return None(), errArgument.Detailf("range bounds must be finite")
		}
	}

	if step == 0 {
		return None(), errArgument.Detailf("range step must not be zero")
	}

	count := math.Ceil((hi - lo) / step)
	if count > maxRange {
		return None(), errArgument.Detailf("range of %s items is too large",
			formatNumber(count))
	}

	items := make([]Value, max(int(count), 0))
	for i := range items {
		items[i] = Number(lo + float64(i)*step)
	}

	return List(items...), nil
}

func helperDefault(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 2, 2); err != nil {
		return None(), err
	}

	if args[0].IsNone() {
		return args[1], nil
	}

	return args[0], nil
}

func helperKeys(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return None(), err
	}

	m, ok := args[0].AsMap()
	if !ok {
		return None(), errArgument.Detailf("keys of %s", args[0].Kind())
	}

	keys := slices.Sorted(maps.Keys(m))

	items := make([]Value, len(keys))
	for i, k := range keys {
		items[i] = String(k)
	}

	return List(items...), nil
}

// exprPrograms caches compiled expr-lang programs by source.
var exprPrograms sync.Map // map[string]*vm.Program

// helperExpr evaluates an expr-lang expression with the remaining arguments
// available as the list "args".
func helperExpr(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, -1); err != nil {
		return None(), err
	}

	source, err := stringArg(args, 0)
	if err != nil {
		return None(), err
	}

	native := make([]any, len(args)-1)
	for i, arg := range args[1:] {
		native[i] = arg.Native()
	}

	env := map[string]any{"args": native}

	var program *vm.Program

	if p, ok := exprPrograms.Load(source); ok {
		program = p.(*vm.Program)
	} else {
		program, err = expr.Compile(source, expr.Env(env))
		if err != nil {
			return None(), errArgument.Wrap(err).Detailf("compile %s", strconv.Quote(source))
		}

		exprPrograms.Store(source, program)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return None(), errArgument.Wrap(err).Detailf("run %s", strconv.Quote(source))
	}

	return FromNative(out)
}

// helperPathPrefix prepends items to a path list, removing duplicates.
func helperPathPrefix(_ context.Context, args []Value) (Value, error) {
	if err := arity(args, 1, -1); err != nil {
		return None(), err
	}

	path, err := stringArg(args, 0)
	if err != nil {
		return None(), err
	}

	prefix := make([]string, 0, len(args)-1)

	for i := 1; i < len(args); i++ {
		if items, ok := args[i].AsList(); ok {
			for _, item := range items {
				prefix = append(prefix, item.String())
			}

			continue
		}

		s, err := stringArg(args, i)
		if err != nil {
			return None(), err
		}

		prefix = append(prefix, s)
	}

	return String(mung.Make(
		mung.WithSubjectItems(path),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()), nil
}
