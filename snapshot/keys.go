package snapshot

import (
	"fmt"

	"pkg.whirlwind.dev/whirlwind/types"
)

// headerKey is the key that stores the Header of a namespace's most recent
// snapshot.
func headerKey(namespace types.Namespace) string {
	return fmt.Sprintf("%s:SNAPSHOT:HEADER", namespace)
}

// componentsKey is the key of the hash that maps a component name to the
// JSON array of its column, one element per entity row. Rows that do not
// carry the component hold a JSON null.
func componentsKey(namespace types.Namespace) string {
	return fmt.Sprintf("%s:SNAPSHOT:COMPONENTS", namespace)
}

// componentSchemasKey is the key of the hash that maps a component name to
// the JSON schema its column was encoded with.
func componentSchemasKey(namespace types.Namespace) string {
	return fmt.Sprintf("%s:SNAPSHOT:COMPONENT-SCHEMAS", namespace)
}

// resourcesKey is the key of the hash that maps a resource name to its JSON
// value.
func resourcesKey(namespace types.Namespace) string {
	return fmt.Sprintf("%s:SNAPSHOT:RESOURCES", namespace)
}

// resourceSchemasKey is the key of the hash that maps a resource name to the
// JSON schema its value was encoded with.
func resourceSchemasKey(namespace types.Namespace) string {
	return fmt.Sprintf("%s:SNAPSHOT:RESOURCE-SCHEMAS", namespace)
}
