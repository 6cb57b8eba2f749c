package lang

import (
	"maps"
	"slices"
)

// Registry resolves subtemplate names to templates. Implementations are
// owned by the caller; the generator and matcher only read from them, and a
// registry must not be modified while a generation call is using it.
type Registry interface {
	Lookup(name string) (*Template, bool)
}

// Subtemplates is a Registry backed by a map.
type Subtemplates map[string]*Template

// Lookup implements Registry.
func (s Subtemplates) Lookup(name string) (*Template, bool) {
	t, ok := s[name]

	return t, ok && t != nil
}

// Names returns the sorted subtemplate names.
func (s Subtemplates) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// RegistryFunc adapts an ordinary function to the Registry interface.
type RegistryFunc func(name string) (*Template, bool)

// Lookup implements Registry.
func (f RegistryFunc) Lookup(name string) (*Template, bool) { return f(name) }

// lookup resolves name in reg, treating a nil registry as empty.
func lookup(reg Registry, name string) (*Template, bool) {
	if reg == nil {
		return nil, false
	}

	t, ok := reg.Lookup(name)

	return t, ok && t != nil
}
