package profile

import (
	"context"
	"log/slog"

	"github.com/ardnew/halfbit/log"
)

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Dir   string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own messages
}

// Option configures a [Profiler].
type Option func(Profiler) Profiler

// New returns a Profiler with the given options applied.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithDir sets the output directory.
func WithDir(dir string) Option {
	return func(p Profiler) Profiler {
		p.Dir = dir

		return p
	}
}

// WithQuiet suppresses the profiler's own messages.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Start begins profiling and returns a Stopper that ends it.
// An empty or unsupported mode, or a build without the pprof tag, yields a
// no-op Stopper. Both Start and Stop are always safe to call.
func (p Profiler) Start(ctx context.Context) Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	s := start(p.Mode, p.Dir, p.Quiet)
	if _, ok := s.(ignore); ok {
		log.WarnContext(ctx, "profiling unavailable",
			slog.String("mode", p.Mode),
			slog.String("tag", Tag))

		return s
	}

	log.DebugContext(ctx, "pprof start",
		slog.String("mode", p.Mode),
		slog.String("dir", p.Dir))

	return stopFunc(func() {
		s.Stop()
		log.DebugContext(ctx, "pprof stop", slog.String("mode", p.Mode))
	})
}

type ignore struct{}

func (ignore) Stop() {}

type stopFunc func()

func (f stopFunc) Stop() { f() }
