package repl

import "github.com/ardnew/fxyaml/pkg"

// Sentinel errors.
var (
	ErrOutOfBounds     = pkg.NewError("index out of range")
	ErrUnknownCommand  = pkg.NewError("unknown command (try :help)")
	ErrHistory         = pkg.NewError("history")
	ErrInvalidFormulas = pkg.NewError("document formulas failed")
)
