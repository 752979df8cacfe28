// Package profile provides optional runtime profiling for fxyaml.
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only
// when building with the pprof tag:
//
//	go build -tags pprof .
//
// Without the tag, [Start] accepts only an empty mode and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
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
//	stop, err := profile.Start(
//		profile.WithMode("cpu"),
//		profile.WithDir("/tmp/profiles"),
//	)
//	if err != nil {
//		return err
//	}
//	defer stop.Stop()
//
// Profiles are written to the directory with names matching the mode (e.g.
// cpu.pprof, mem.pprof) and analyzed with go tool pprof:
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// The HTTP service exposes the live endpoints from [net/http/pprof] under
// /debug when started with fxyaml serve --profiler, independent of this
// package.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
