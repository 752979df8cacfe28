package calc

import (
	"maps"
	"slices"
)

// Env is the name/value environment formulas read from and write into.
//
// An Env is owned by a single evaluation and is not safe for concurrent use.
type Env struct {
	vars map[string]any
}

// NewEnv returns an environment seeded with a copy of initial.
func NewEnv(initial map[string]any) *Env {
	vars := make(map[string]any, len(initial))
	maps.Copy(vars, initial)

	return &Env{vars: vars}
}

// Get returns the value bound to name.
func (e *Env) Get(name string) (any, bool) {
	v, ok := e.vars[name]

	return v, ok
}

// Set binds name to v, replacing any previous value.
func (e *Env) Set(name string, v any) {
	e.vars[name] = v
}

// Delete removes name.
func (e *Env) Delete(name string) {
	delete(e.vars, name)
}

// Len returns the number of bound names.
func (e *Env) Len() int { return len(e.vars) }

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// Clone returns an independent shallow copy of e.
func (e *Env) Clone() *Env {
	return NewEnv(e.vars)
}

// Map returns a shallow copy of the bindings.
func (e *Env) Map() map[string]any {
	return maps.Clone(e.vars)
}
