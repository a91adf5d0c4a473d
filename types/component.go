package types

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// ErrComponentSchemaMismatch is returned when the reflected JSON schema of a
// component type does not match the schema recorded under the same name, for
// example when a struct field was added after a snapshot was taken.
var ErrComponentSchemaMismatch = eris.New("component schema does not match target schema")

// ComponentID is the sequential id a component type receives when it is
// registered with a world. IDs start at 1 and follow registration order.
type ComponentID int

// Component is the interface the user needs to implement to attach a type to
// entities. Name is the stable storage key of the type: it must be unique
// within a world and stay the same across runs, since snapshot columns and
// schemas are stored under it.
type Component interface {
	Name() string
}

// ComponentMetadata wraps a user-defined Component type with the runtime
// machinery the engine needs internally: id assignment, JSON round-tripping
// of stored values, and schema validation.
type ComponentMetadata interface { //revive:disable-line:exported
	// SetID sets the registration id of this component. It must only be set once.
	SetID(ComponentID) error
	// ID returns the registration id of the component.
	ID() ComponentID

	// Encode marshals a stored value of this component type to JSON.
	Encode(any) ([]byte, error)
	// Decode unmarshals JSON into a boxed pointer to this component type.
	Decode([]byte) (Component, error)
	// GetSchema returns the reflected JSON schema of the component type.
	GetSchema() []byte
	// ValidateAgainstSchema compares the component's schema against a stored
	// schema. A structural difference yields ErrComponentSchemaMismatch.
	ValidateAgainstSchema(targetSchema []byte) error

	Component
}

// SerializeComponentSchema serializes the schema of a component.
func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsComponentValid reports whether the reflected schema of c structurally
// matches the given schema bytes.
func IsComponentValid(c Component, jsonSchemaBytes []byte) (bool, error) {
	componentSchemaBytes, err := SerializeComponentSchema(c)
	if err != nil {
		return false, err
	}
	return isSchemaValid(componentSchemaBytes, jsonSchemaBytes)
}

func isSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, err
	}
	return len(patch) == 0, nil
}
