// Package repl implements the interactive fxyaml session.
//
// A [Session] keeps a variable environment across lines. Each line is a
// formula to evaluate, a definition of the form "name: =formula" that
// binds its value, or a command beginning with ':' (see :help).
package repl
