package whirlwind

import (
	"github.com/rs/zerolog"

	wwlog "pkg.whirlwind.dev/whirlwind/log"
	"pkg.whirlwind.dev/whirlwind/types"
)

// EntityWorld is a transient handle binding one entity to its world so
// component edits can be chained. It layers no storage semantics of its own
// on top of the world's operations; the first error in a chain is kept and
// every later mutation becomes a no-op, so a chain can be built without
// checking each step. Check Err (or use ID for the happy path) when done.
type EntityWorld struct {
	world *World
	id    types.EntityID
	err   error
}

// Insert stores the given component values at this entity's row, registering
// unseen component types on the fly.
func (e *EntityWorld) Insert(components ...types.Component) *EntityWorld {
	if e.err != nil {
		return e
	}

	inserted := make([]types.ComponentMetadata, 0, len(components))
	for _, comp := range components {
		metadata, err := e.world.registerComponentValue(comp)
		if err != nil {
			e.err = err
			return e
		}
		if err := e.world.state.SetSlot(metadata.ID(), e.id, boxComponent(comp)); err != nil {
			e.err = err
			return e
		}
		inserted = append(inserted, metadata)
	}

	if len(inserted) > 0 {
		wwlog.Entity(e.world.logger, zerolog.DebugLevel, e.id, inserted)
	}
	return e
}

// Remove clears this entity's slot for the component's type. The value is
// only a type token; its fields are ignored.
func (e *EntityWorld) Remove(component types.Component) *EntityWorld {
	if e.err != nil {
		return e
	}

	metadata, err := e.world.registerComponentValue(component)
	if err != nil {
		e.err = err
		return e
	}
	if err := e.world.state.ClearSlot(metadata.ID(), e.id); err != nil {
		e.err = err
	}
	return e
}

// ID returns the entity's id and ends the chain.
func (e *EntityWorld) ID() types.EntityID {
	return e.id
}

// Err returns the first error the chain hit, if any.
func (e *EntityWorld) Err() error {
	return e.err
}

// Despawn clears every component slot at this entity's row.
func (e *EntityWorld) Despawn() error {
	return e.world.Despawn(e.id)
}

// Get returns this entity's boxed value for the component's type, which is
// only a type token. Use GetComponent for typed access.
func (e *EntityWorld) Get(component types.Component) (types.Component, error) {
	metadata, err := e.world.componentManager.ComponentByName(component.Name())
	if err != nil {
		return nil, err
	}
	return e.world.state.Slot(metadata.ID(), e.id)
}

// Component is the fatal counterpart of Get: it assumes the component is
// present and halts with a diagnostic when it is not.
func (e *EntityWorld) Component(component types.Component) types.Component {
	value, err := e.Get(component)
	if err != nil {
		e.world.logger.Panic().Err(err).Msgf("entity %d must have component %q", e.id, component.Name())
	}
	return value
}
