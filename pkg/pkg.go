//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the fxyaml module embedded at build time.
//
//go:embed VERSION
var version string

// Version returns the embedded version string without surrounding whitespace.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text, default config paths,
	// and the prefix of environment variable overrides.
	Name = "fxyaml"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Evaluate formulas embedded in YAML documents"
	// EnvPrefix is prepended to configuration keys read from the process
	// environment.
	EnvPrefix = "FXYAML_"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
