//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"
)

// Modes returns the sorted names of the supported profiling modes.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

func start(c config) (Stopper, error) {
	fn, ok := mode[c.mode]
	if !ok {
		return nil, errUnknownMode(c.mode)
	}

	// NoShutdownHook leaves signal handling to the caller's context.
	opts := []func(*profile.Profile){fn, profile.NoShutdownHook}

	if c.dir != "" {
		opts = append(opts, profile.ProfilePath(c.dir))
	}

	if c.quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...), nil
}
