// Package cmd implements the fxyaml subcommands.
//
// Commands receive their dependencies through the [context.Context] bound
// by the cli package: the parsed [kong.Context] ([WithContext]), the
// [calc.Calculator] selected by the global flags ([WithCalculator]), and
// the standard streams ([WithStreams]).
package cmd

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/server"
)

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable identifier containing the path
	// to the REPL history file.
	HistoryIdentifier = "history"
)

// HistoryFile is the base name of the REPL history file in the cache
// directory.
const HistoryFile = "history.utf8"

// Vars returns the kong variables referenced by the command flags.
func Vars() kong.Vars {
	return kong.Vars{
		"outputEnum":     strings.Join(calc.Formats(), ",") + ",md",
		"addrDefault":    server.DefaultAddr,
		"maxBodyDefault": "1048576",
	}
}
