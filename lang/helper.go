package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Helper is a named function callable from expressions.
type Helper interface {
	Invoke(ctx context.Context, args []Value) (Value, error)
}

// HelperFunc adapts an ordinary function to the [Helper] interface.
type HelperFunc func(ctx context.Context, args []Value) (Value, error)

// Invoke calls f(ctx, args).
func (f HelperFunc) Invoke(ctx context.Context, args []Value) (Value, error) {
	return f(ctx, args)
}

// Registry maps helper names to implementations.
//
// Helpers are registered during setup. The first evaluation that uses the
// Registry seals it; later registrations fail with [ErrRegistrySealed], so
// lookups during evaluation need no coordination with writers.
type Registry struct {
	mu      sync.RWMutex
	helpers map[string]Helper
	sealed  atomic.Bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{helpers: map[string]Helper{}}
}

// Register adds a helper under name.
func (r *Registry) Register(name string, h Helper) error {
	if r.sealed.Load() {
		return ErrRegistrySealed.Detailf("%s", name).With(slog.String("name", name))
	}

	if !ValidName(name) {
		return ErrHelper.Detailf("invalid helper name %q", name).
			With(slog.String("name", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.helpers[name]; ok {
		return ErrDuplicateHelper.Detailf("%s", name).With(slog.String("name", name))
	}

	r.helpers[name] = h

	return nil
}

// RegisterFunc adds fn under name.
func (r *Registry) RegisterFunc(name string, fn HelperFunc) error {
	return r.Register(name, fn)
}

// Seal prevents further registration.
func (r *Registry) Seal() { r.sealed.Store(true) }

// Sealed reports whether the registry accepts registrations.
func (r *Registry) Sealed() bool { return r.sealed.Load() }

// Lookup returns the helper registered under name.
func (r *Registry) Lookup(name string) (Helper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.helpers[name]

	return h, ok
}

// Invoke calls the helper registered under name. Unknown names fail with
// [ErrUnknownHelper]; failures inside the helper are wrapped in [ErrHelper].
func (r *Registry) Invoke(
	ctx context.Context,
	name string,
	args []Value,
) (Value, error) {
	h, ok := r.Lookup(name)
	if !ok {
		return None(), ErrUnknownHelper.Detailf("%s", name).
			With(slog.String("name", name))
	}

	v, err := h.Invoke(ctx, args)
	if err != nil {
		return None(), ErrHelper.Wrap(err).Detailf("%s", name).
			With(slog.String("name", name))
	}

	return v, nil
}

// Names returns the registered helper names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.helpers))
}

// ValidName reports whether s can be used as a variable or helper name: an
// identifier that is not a keyword.
func ValidName(s string) bool {
	if s == "" || keywords[s] || !isIdentifierStart(s[0]) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isIdentifierContinue(s[i]) {
			return false
		}
	}

	return true
}
