package whirlwind

import (
	"pkg.whirlwind.dev/whirlwind/types"
)

// QueryResult pairs an entity with its component value. The pointer aliases
// the stored value, so mutating through it updates the world.
type QueryResult[T types.Component] struct {
	ID        types.EntityID
	Component *T
}

// Query returns an (entity, component) pair for every row where T is
// occupied, in strictly ascending row order with no duplicates. Rows without
// T are skipped, never padded in, and an unregistered T yields an empty
// result. Plain in-memory iteration has no failure mode, so there is no
// error to return.
func Query[T types.Component](w *World) []QueryResult[T] {
	results := make([]QueryResult[T], 0)

	var t T
	metadata, err := w.componentManager.ComponentByName(t.Name())
	if err != nil {
		return results
	}

	w.state.EachSlot(metadata.ID(), func(row types.EntityID, value types.Component) bool {
		comp, ok := value.(*T)
		if !ok {
			// A same-named component registered through a different Go type.
			// Type isolation says it is invisible to this query.
			return true
		}
		results = append(results, QueryResult[T]{ID: row, Component: comp})
		return true
	})

	return results
}
