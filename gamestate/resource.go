package gamestate

import (
	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/types"
)

// SetResource stores the singleton value for a resource name, replacing any
// earlier value. There is no per-entity dimension: later writes win.
func (s *State) SetResource(name string, value types.Component) {
	if _, ok := s.resources[name]; !ok {
		s.resourceOrder = append(s.resourceOrder, name)
	}
	s.resources[name] = value
}

// Resource returns the boxed singleton stored under a resource name.
func (s *State) Resource(name string) (types.Component, error) {
	value, ok := s.resources[name]
	if !ok {
		return nil, eris.Wrapf(ErrResourceNotFound, "no %q resource has been inserted", name)
	}
	return value, nil
}

// EachResource calls fn for every stored resource in insertion order.
// Iteration stops early when fn returns false.
func (s *State) EachResource(fn func(name string, value types.Component) bool) {
	for _, name := range s.resourceOrder {
		if !fn(name, s.resources[name]) {
			return
		}
	}
}
