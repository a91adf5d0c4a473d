package whirlwind

import (
	"reflect"
	"strconv"

	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/component"
	"pkg.whirlwind.dev/whirlwind/types"
)

// RegisterComponent registers the component type T with the world, allocating
// a column backfilled with an empty slot for every entity spawned so far.
// Registering the same type again is a no-op that keeps existing data.
func RegisterComponent[T types.Component](w *World) error {
	compMetadata, err := component.NewComponentMetadata[T]()
	if err != nil {
		return err
	}

	metadata, err := w.componentManager.Register(compMetadata)
	if err != nil {
		return err
	}

	if err := w.state.RegisterColumn(metadata.ID(), metadata.Name()); err != nil {
		return err
	}

	w.logger.Debug().
		Str("component_name", metadata.Name()).
		Int("component_id", int(metadata.ID())).
		Msg("registered component")

	return nil
}

// MustRegisterComponent registers the component type T and halts on failure.
func MustRegisterComponent[T types.Component](w *World) {
	if err := RegisterComponent[T](w); err != nil {
		var t T
		w.logger.Panic().Err(err).Msgf("failed to register component %q: %v", t.Name(), eris.ToString(err, true))
	}
}

// AddComponent stores the given value at the entity's row for type T,
// overwriting any value already there. If T was never registered it is
// registered first, with backfill, and the store happens exactly once.
func AddComponent[T types.Component](w *World, id types.EntityID, comp T) error {
	metadata, err := ensureRegistered[T](w)
	if err != nil {
		return err
	}

	if err := w.state.SetSlot(metadata.ID(), id, boxComponent(comp)); err != nil {
		return err
	}

	w.logger.Debug().
		Str("entity_id", strconv.FormatUint(uint64(id), 10)).
		Str("component_name", metadata.Name()).
		Int("component_id", int(metadata.ID())).
		Msg("entity updated")

	return nil
}

// GetComponent returns the value at the entity's row for type T. The pointer
// aliases the stored value, so mutating through it updates the world.
func GetComponent[T types.Component](w *World, id types.EntityID) (*T, error) {
	// Get the component metadata
	var t T
	metadata, err := w.componentManager.ComponentByName(t.Name())
	if err != nil {
		return nil, err
	}

	// Get current component value
	value, err := w.state.Slot(metadata.ID(), id)
	if err != nil {
		return nil, err
	}

	// Type assert the component value to the component type
	comp, ok := value.(*T)
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotOnEntity,
			"component %q on entity %d holds %T, not %T", t.Name(), id, value, &t)
	}

	return comp, nil
}

// UpdateComponent reads the entity's T value and hands it to fn for in-place
// modification.
func UpdateComponent[T types.Component](w *World, id types.EntityID, fn func(*T)) error {
	comp, err := GetComponent[T](w, id)
	if err != nil {
		return err
	}
	fn(comp)
	return nil
}

// RemoveComponent clears the entity's slot for type T. If T was never
// registered it is registered first; the slot is empty either way.
func RemoveComponent[T types.Component](w *World, id types.EntityID) error {
	metadata, err := ensureRegistered[T](w)
	if err != nil {
		return err
	}
	return w.state.ClearSlot(metadata.ID(), id)
}

// GetSingle returns T's sole value when exactly one entity has ever been
// spawned. The check is on total rows, not occupied slots: zero entities,
// two or more entities, or one entity without the component are all absence.
func GetSingle[T types.Component](w *World) (*T, error) {
	var t T
	if _, err := w.componentManager.ComponentByName(t.Name()); err != nil {
		return nil, err
	}

	if rows := w.state.RowCount(); rows != 1 {
		return nil, eris.Wrapf(ErrNotExactlyOneEntity, "world has %d entities, component %q needs exactly 1",
			rows, t.Name())
	}

	return GetComponent[T](w, 0)
}

// MustSingle returns T's sole value and halts with a diagnostic when the
// world does not hold exactly one entity carrying it.
func MustSingle[T types.Component](w *World) *T {
	comp, err := GetSingle[T](w)
	if err != nil {
		var t T
		w.logger.Panic().Err(err).Msgf("expected exactly one entity with component %q: %v",
			t.Name(), eris.ToString(err, true))
	}
	return comp
}

// ensureRegistered resolves T's metadata, registering the type on first use.
func ensureRegistered[T types.Component](w *World) (types.ComponentMetadata, error) {
	var t T
	metadata, err := w.componentManager.ComponentByName(t.Name())
	if err == nil {
		return metadata, nil
	}
	if !eris.Is(err, ErrComponentNotRegistered) {
		return nil, err
	}

	if err := RegisterComponent[T](w); err != nil {
		return nil, err
	}
	return w.componentManager.ComponentByName(t.Name())
}

// boxComponent normalizes a component to its boxed pointer form, the only
// shape the store holds, so reads can hand back a mutable alias.
func boxComponent(comp types.Component) types.Component {
	v := reflect.ValueOf(comp)
	if v.Kind() == reflect.Pointer {
		return comp
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr.Interface().(types.Component)
}
