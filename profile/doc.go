// Package profile provides optional runtime profiling for hb.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o hb .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// [Stopper], so callers never need their own build constraints.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	hb --pprof-mode=cpu -e build Makefile
//	go tool pprof -http=: ~/.cache/hb/pprof/cpu.pprof
//
// Profiles are written to [Profiler.Dir], which the CLI defaults to the
// "pprof" directory under the cache directory.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
