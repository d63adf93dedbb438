package interp

import (
	"fmt"
	"sort"
)

// Env is the execution context: a flat variable store shared by every
// block of a run. There is no lexical scoping.
type Env struct {
	vars map[string]Value
}

// NewEnv returns an empty store.
func NewEnv() *Env {
	return &Env{vars: make(map[string]Value)}
}

// Declare binds name to v, replacing any previous binding.
func (e *Env) Declare(name string, v Value) {
	e.vars[name] = v
}

// Set overwrites an existing binding.
func (e *Env) Set(name string, v Value) error {
	if _, ok := e.vars[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnboundVariable, name)
	}
	e.vars[name] = v
	return nil
}

// Get returns the value bound to name.
func (e *Env) Get(name string) (Value, error) {
	v, ok := e.vars[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnboundVariable, name)
	}
	return v, nil
}

// Lookup returns the value bound to name and whether it exists.
func (e *Env) Lookup(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bindings.
func (e *Env) Len() int {
	return len(e.vars)
}
