package lang

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Scope maps names to values within one level of a [Context].
type Scope map[string]Value

// Mode selects how a [Context] treats unresolved variables.
type Mode int

const (
	// Strict reports unresolved variables as errors.
	Strict Mode = iota
	// Lenient resolves unresolved variables to none.
	Lenient
)

func (m Mode) String() string {
	if m == Lenient {
		return "lenient"
	}

	return "strict"
}

// Context is the variable environment of an evaluation: a stack of scopes
// searched from the innermost outward. A Context is owned by one evaluation
// at a time.
type Context struct {
	scopes []Scope
	mode   Mode
}

// NewContext returns a Context whose scopes are given outermost first.
// Each scope is copied. With no scopes, the Context has one empty root scope.
func NewContext(mode Mode, scopes ...Scope) *Context {
	c := &Context{mode: mode}

	for _, s := range scopes {
		c.PushScope(s)
	}

	if len(c.scopes) == 0 {
		c.PushScope(nil)
	}

	return c
}

func (c *Context) Mode() Mode { return c.mode }

// Depth returns the number of scopes on the stack.
func (c *Context) Depth() int { return len(c.scopes) }

// PushScope pushes a copy of s as the new innermost scope.
func (c *Context) PushScope(s Scope) {
	if s == nil {
		s = Scope{}
	} else {
		s = maps.Clone(s)
	}

	c.scopes = append(c.scopes, s)
}

// PopScope removes the innermost scope. The root scope is never removed;
// PopScope reports whether a scope was popped.
func (c *Context) PopScope() bool {
	if len(c.scopes) <= 1 {
		return false
	}

	c.scopes[len(c.scopes)-1] = nil
	c.scopes = c.scopes[:len(c.scopes)-1]

	return true
}

// WithScope runs fn with s pushed as the innermost scope, popping it when fn
// returns, including on error or panic.
func (c *Context) WithScope(s Scope, fn func() error) error {
	c.PushScope(s)
	defer c.PopScope()

	return fn()
}

// Define binds name in the innermost scope.
func (c *Context) Define(name string, v Value) {
	c.scopes[len(c.scopes)-1][name] = v
}

// Lookup finds name in the innermost scope that defines it.
func (c *Context) Lookup(name string) (Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}

	return None(), false
}

// Resolve looks up a dotted path. The first segment is found by searching
// scopes from innermost to outermost; each later segment is a property of
// the previous value. An unresolved path is an error in [Strict] mode and
// none in [Lenient] mode.
func (c *Context) Resolve(path []string) (Value, error) {
	if len(path) == 0 {
		return None(), ErrUndefinedVariable.Detailf("empty path")
	}

	v, ok := c.Lookup(path[0])

	for i := 1; ok && i < len(path); i++ {
		v, ok = v.Property(path[i])
	}

	if ok {
		return v, nil
	}

	if c.mode == Lenient {
		return None(), nil
	}

	name := strings.Join(path, ".")

	return None(), ErrUndefinedVariable.Detailf("%s", name).
		With(slog.String("path", name))
}

// Names returns every name visible from the innermost scope, sorted.
func (c *Context) Names() []string {
	seen := map[string]struct{}{}
	for _, s := range c.scopes {
		for k := range s {
			seen[k] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}
