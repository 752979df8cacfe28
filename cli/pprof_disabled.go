//go:build !pprof

package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fxyaml/profile"
)

// pprofConfig has no flags when built without the pprof tag.
type pprofConfig struct{}

func (pprofConfig) vars() kong.Vars { return kong.Vars{} }

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start returns the no-op profiler.
func (pprofConfig) start(context.Context) (stop func(), err error) {
	profiler, err := profile.Start()
	if err != nil {
		return nil, err
	}

	return profiler.Stop, nil
}
