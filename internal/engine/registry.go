package engine

import (
	"sort"

	"github.com/itsmostafa/gomacro/internal/interp"
)

// Registry maps command names to handlers.
type Registry struct {
	cmds map[string]interp.CommandFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]interp.CommandFunc)}
}

// Register installs fn under name, replacing any previous handler.
func (r *Registry) Register(name string, fn interp.CommandFunc) {
	r.cmds[name] = fn
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (interp.CommandFunc, bool) {
	fn, ok := r.cmds[name]
	return fn, ok
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
