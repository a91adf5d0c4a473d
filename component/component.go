package component

import (
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"pkg.whirlwind.dev/whirlwind/codec"
	"pkg.whirlwind.dev/whirlwind/types"
)

// Interface guard
var _ types.ComponentMetadata = (*componentMetadata[types.Component])(nil)

// componentMetadata represents a type of component. It is used to identify
// a component when getting or setting the component of an entity.
type componentMetadata[T types.Component] struct {
	isIDSet bool
	id      types.ComponentID
	name    string
	schema  []byte
}

// NewComponentMetadata creates the metadata for a component type known at
// compile time.
func NewComponentMetadata[T types.Component]() (types.ComponentMetadata, error) {
	var t T
	schema, err := types.SerializeComponentSchema(t)
	if err != nil {
		return nil, err
	}
	return &componentMetadata[T]{
		name:   t.Name(),
		schema: schema,
	}, nil
}

// SetID sets this component's id. It must be unique across the world object.
func (c *componentMetadata[T]) SetID(id types.ComponentID) error {
	if c.isIDSet {
		// Components are nearly always registered once, on startup. Tests
		// sometimes reuse a component across worlds, which is fine as long
		// as the id does not change.
		if id == c.id {
			return nil
		}
		return eris.Errorf("id for component %q is already set to %d, cannot change to %d", c.name, c.id, id)
	}
	c.id = id
	c.isIDSet = true
	return nil
}

// String returns the component type name.
func (c *componentMetadata[T]) String() string {
	return c.name
}

// Name returns the component type name.
func (c *componentMetadata[T]) Name() string {
	return c.name
}

// ID returns the component type id.
func (c *componentMetadata[T]) ID() types.ComponentID {
	return c.id
}

func (c *componentMetadata[T]) GetSchema() []byte {
	return c.schema
}

func (c *componentMetadata[T]) Encode(v any) ([]byte, error) {
	return codec.Encode(v)
}

// Decode returns a boxed *T so that values restored from a snapshot alias the
// same way values stored through the world's accessors do.
func (c *componentMetadata[T]) Decode(bz []byte) (types.Component, error) {
	var value T
	if err := codec.DecodeInto(bz, &value); err != nil {
		return nil, err
	}
	return any(&value).(types.Component), nil
}

func (c *componentMetadata[T]) ValidateAgainstSchema(targetSchema []byte) error {
	return validateSchema(c.name, c.schema, targetSchema)
}

// validateSchema structurally compares two reflected JSON schemas and wraps
// the drift, if any, in types.ErrComponentSchemaMismatch with the full diff.
func validateSchema(name string, schema, targetSchema []byte) error {
	patch, err := jsondiff.CompareJSON(schema, targetSchema)
	if err != nil {
		return eris.Wrapf(err, "failed to compare schemas for component %q", name)
	}
	if len(patch) > 0 {
		return eris.Wrapf(types.ErrComponentSchemaMismatch, "component %q drifted from the target schema: %s",
			name, patch.String())
	}
	return nil
}
