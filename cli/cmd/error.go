package cmd

import "github.com/ardnew/fxyaml/pkg"

var (
	ErrReadSource   = pkg.NewError("read source")
	ErrContextFlag  = pkg.NewError("invalid --context")
	ErrWatch        = pkg.NewError("watch source")
	ErrWatchStdin   = pkg.NewError("cannot watch standard input")
	ErrNoCalculator = pkg.NewError("no calculator in context")
)
