package component

import (
	"reflect"

	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/codec"
	"pkg.whirlwind.dev/whirlwind/types"
)

var _ types.ComponentMetadata = (*dynamicMetadata)(nil)

// dynamicMetadata is component metadata built from a runtime value instead of
// a type parameter. Entity builders accept plain types.Component values, so
// registration on that path has no compile-time type to hand to
// NewComponentMetadata.
type dynamicMetadata struct {
	isIDSet bool
	id      types.ComponentID
	name    string
	typ     reflect.Type
	schema  []byte
}

// NewDynamicMetadata creates component metadata from a concrete component
// value. Pointer values are unwrapped so that the stored type is always the
// underlying struct type.
func NewDynamicMetadata(value types.Component) (types.ComponentMetadata, error) {
	typ := reflect.TypeOf(value)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	schema, err := types.SerializeComponentSchema(value)
	if err != nil {
		return nil, err
	}
	return &dynamicMetadata{
		name:   value.Name(),
		typ:    typ,
		schema: schema,
	}, nil
}

func (d *dynamicMetadata) SetID(id types.ComponentID) error {
	if d.isIDSet {
		if id == d.id {
			return nil
		}
		return eris.Errorf("id for component %q is already set to %d, cannot change to %d", d.name, d.id, id)
	}
	d.id = id
	d.isIDSet = true
	return nil
}

func (d *dynamicMetadata) String() string {
	return d.name
}

func (d *dynamicMetadata) Name() string {
	return d.name
}

func (d *dynamicMetadata) ID() types.ComponentID {
	return d.id
}

func (d *dynamicMetadata) GetSchema() []byte {
	return d.schema
}

func (d *dynamicMetadata) Encode(v any) ([]byte, error) {
	return codec.Encode(v)
}

func (d *dynamicMetadata) Decode(bz []byte) (types.Component, error) {
	value := reflect.New(d.typ)
	if err := codec.DecodeInto(bz, value.Interface()); err != nil {
		return nil, err
	}
	comp, ok := value.Interface().(types.Component)
	if !ok {
		return nil, eris.Errorf("decoded %q value does not implement Component", d.name)
	}
	return comp, nil
}

func (d *dynamicMetadata) ValidateAgainstSchema(targetSchema []byte) error {
	return validateSchema(d.name, d.schema, targetSchema)
}
