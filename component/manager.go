package component

import (
	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/gamestate"
	"pkg.whirlwind.dev/whirlwind/types"
)

// Manager tracks every component and resource type registered with a world.
// Component ids are handed out sequentially in registration order, which is
// also the order the world's state keeps its columns in.
type Manager struct {
	registeredComponents []types.ComponentMetadata
	componentsByName     map[string]types.ComponentMetadata
	resourcesByName      map[string]types.ComponentMetadata
}

// NewManager creates a new component manager.
func NewManager() *Manager {
	return &Manager{
		registeredComponents: make([]types.ComponentMetadata, 0),
		componentsByName:     map[string]types.ComponentMetadata{},
		resourcesByName:      map[string]types.ComponentMetadata{},
	}
}

// Register registers a component type with the manager. Registering the same
// component type again is a no-op that returns the original metadata, so any
// data already stored under its id survives. Registering a different type
// under an already-taken name is rejected.
func (m *Manager) Register(metadata types.ComponentMetadata) (types.ComponentMetadata, error) {
	name := metadata.Name()
	if existing, ok := m.componentsByName[name]; ok {
		if err := existing.ValidateAgainstSchema(metadata.GetSchema()); err != nil {
			return nil, eris.Wrapf(err, "component %q is already registered with a different schema", name)
		}
		return existing, nil
	}

	id := types.ComponentID(len(m.registeredComponents) + 1)
	if err := metadata.SetID(id); err != nil {
		return nil, err
	}
	m.registeredComponents = append(m.registeredComponents, metadata)
	m.componentsByName[name] = metadata
	return metadata, nil
}

// ComponentByName returns the metadata for a registered component type.
func (m *Manager) ComponentByName(name string) (types.ComponentMetadata, error) {
	metadata, ok := m.componentsByName[name]
	if !ok {
		return nil, eris.Wrapf(gamestate.ErrComponentNotRegistered, "component %q is not registered", name)
	}
	return metadata, nil
}

// Components returns the metadata for every registered component type in
// registration order.
func (m *Manager) Components() []types.ComponentMetadata {
	return m.registeredComponents
}

// RegisterResource records the metadata used to serialize a resource.
// Resources are singletons keyed by name, and inserting a resource again
// replaces the old value, so the latest metadata always wins.
func (m *Manager) RegisterResource(metadata types.ComponentMetadata) {
	m.resourcesByName[metadata.Name()] = metadata
}

// ResourceByName returns the metadata for a registered resource type.
func (m *Manager) ResourceByName(name string) (types.ComponentMetadata, error) {
	metadata, ok := m.resourcesByName[name]
	if !ok {
		return nil, eris.Wrapf(gamestate.ErrResourceNotFound, "resource %q is not registered", name)
	}
	return metadata, nil
}
