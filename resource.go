package whirlwind

import (
	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/component"
	"pkg.whirlwind.dev/whirlwind/types"
)

// InitResource stores T's zero value as the world's T resource, replacing
// any value already there.
func InitResource[T types.Component](w *World) {
	var zero T
	InsertResource(w, zero)
}

// InsertResource stores the given value as the world's singleton T resource.
// Later inserts for the same type overwrite earlier ones; no prior value
// survives. A type that cannot be serialized is a wiring error and halts.
func InsertResource[T types.Component](w *World, value T) {
	metadata, err := component.NewComponentMetadata[T]()
	if err != nil {
		w.logger.Panic().Err(err).Msgf("resource %T is not serializable: %v", value, eris.ToString(err, true))
	}

	w.componentManager.RegisterResource(metadata)
	w.state.SetResource(metadata.Name(), boxComponent(value))

	w.logger.Debug().Str("resource_name", metadata.Name()).Msg("resource inserted")
}

// GetResource returns the world's T resource. Absence is an explicit error,
// never a default value. The pointer aliases the stored value, so mutating
// through it updates the world.
func GetResource[T types.Component](w *World) (*T, error) {
	var t T
	value, err := w.state.Resource(t.Name())
	if err != nil {
		return nil, err
	}

	resource, ok := value.(*T)
	if !ok {
		return nil, eris.Wrapf(ErrResourceNotFound, "resource %q holds %T, not %T", t.Name(), value, &t)
	}

	return resource, nil
}

// MustResource returns the world's T resource and halts with a diagnostic
// naming the type when it was never inserted.
func MustResource[T types.Component](w *World) *T {
	resource, err := GetResource[T](w)
	if err != nil {
		var t T
		w.logger.Panic().Err(err).Msgf("resource %q must be present: %v", t.Name(), eris.ToString(err, true))
	}
	return resource
}
