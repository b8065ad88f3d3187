package lang

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type of a [Value].
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the result of evaluating an expression. The zero Value is none.
// Values are immutable; List and Map payloads must not be modified after
// construction.
type Value struct {
	list []Value
	m    map[string]Value
	s    string
	n    float64
	kind Kind
	b    bool
}

// None returns the absent value.
func None() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list of the given items.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{kind: KindList, list: items}
}

// Map returns a map value. The map is not copied.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}

	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNone() bool { return v.kind == KindNone }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

// Len returns the length of a string, list, or map, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.s)
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Property returns the named entry of a map value.
func (v Value) Property(name string) (Value, bool) {
	if v.kind != KindMap {
		return None(), false
	}

	p, ok := v.m[name]

	return p, ok
}

// Truthy reports the value's truthiness: none and false are falsy, numbers
// are truthy when non-zero, and strings, lists, and maps when non-empty.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindString, KindList, KindMap:
		return v.Len() > 0
	default:
		return false
	}
}

// Equal reports whether v and o have the same kind and payload.
// Lists and maps compare element-wise.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNone:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindMap:
		return maps.EqualFunc(v.m, o.m, Value.Equal)
	default:
		return false
	}
}

// String returns the text form of the value. Strings are unquoted at the top
// level and quoted inside lists and maps; none renders as "" at the top level
// and as "none" inside lists and maps.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return ""
	case KindString:
		return v.s
	default:
		return v.Quote()
	}
}

// Quote returns the text form of the value with strings quoted and none
// spelled out.
func (v Value) Quote() string {
	var sb strings.Builder

	v.write(&sb)

	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case KindNone:
		sb.WriteString("none")

	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))

	case KindNumber:
		sb.WriteString(formatNumber(v.n))

	case KindString:
		sb.WriteString(strconv.Quote(v.s))

	case KindList:
		sb.WriteByte('[')

		for i, item := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}

			item.write(sb)
		}

		sb.WriteByte(']')

	case KindMap:
		if len(v.m) == 0 {
			sb.WriteString("{}")

			return
		}

		sb.WriteString("{ ")

		for i, key := range slices.Sorted(maps.Keys(v.m)) {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(key)
			sb.WriteString(": ")
			v.m[key].write(sb)
		}

		sb.WriteString(" }")
	}
}

// maxExactInt is the largest magnitude below which every integer is exactly
// representable as a float64.
const maxExactInt = 1 << 53

func formatNumber(n float64) string {
	switch {
	case n == 0:
		return "0"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}

// Native converts the value to plain Go values: nil, bool, int64 or
// float64, string, []any, and map[string]any.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.n == math.Trunc(v.n) && math.Abs(v.n) <= maxExactInt {
			return int64(v.n)
		}

		return v.n
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}

		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Native()
		}

		return out
	default:
		return nil
	}
}

// FromNative converts decoded Go data into a Value. Supported inputs are
// nil, booleans, integers, floats, strings, byte slices, time.Time, Value,
// and slices and maps of supported inputs.
func FromNative(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return None(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case []byte:
		return String(string(x)), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case time.Time:
		return String(x.Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			item, err := FromNative(e)
			if err != nil {
				return None(), err
			}

			items[i] = item
		}

		return List(items...), nil
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			item, err := FromNative(e)
			if err != nil {
				return None(), err
			}

			m[k] = item
		}

		return Map(m), nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil

	case reflect.String:
		return String(rv.String()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil

	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return None(), nil
		}

		return FromNative(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			item, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return None(), err
			}

			items[i] = item
		}

		return List(items...), nil

	case reflect.Map:
		m := make(map[string]Value, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			item, err := FromNative(iter.Value().Interface())
			if err != nil {
				return None(), err
			}

			m[fmt.Sprint(iter.Key().Interface())] = item
		}

		return Map(m), nil
	}

	if rv.IsValid() && rv.CanInterface() {
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			return String(s.String()), nil
		}
	}

	return None(), ErrData.Detailf("unsupported type %s", rv.Type())
}
