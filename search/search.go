// Package search finds entities by the components they hold.
package search

import (
	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/filter"
	"pkg.whirlwind.dev/whirlwind/gamestate"
	"pkg.whirlwind.dev/whirlwind/types"
)

// ErrNoMatchingEntity is returned by First when the filter matches nothing.
var ErrNoMatchingEntity = eris.New("no entity matches the given filter")

// CallbackFn is invoked with each matching entity id. Return false to stop
// the iteration, true to continue.
type CallbackFn func(types.EntityID) bool

// Search represents a search for entities.
// It is used to filter entities based on their components.
// It receives arbitrary filters that are used to filter entities.
type Search struct {
	state  *gamestate.State
	filter filter.ComponentFilter
}

// New creates a new search over the given state.
// It receives an arbitrary filter that is used to filter entities.
func New(state *gamestate.State, componentFilter filter.ComponentFilter) *Search {
	return &Search{
		state:  state,
		filter: componentFilter,
	}
}

// Each iterates over all entities that match the search in ascending id
// order. Despawned rows hold no components, so a filter that requires any
// component skips them; only All or an empty Contains can see them.
func (s *Search) Each(callback CallbackFn) {
	rows := s.state.RowCount()
	for row := 0; row < rows; row++ {
		id := types.EntityID(row)
		if !s.filter.MatchesComponents(s.state.RowComponents(id)) {
			continue
		}
		if !callback(id) {
			return
		}
	}
}

// Count returns the number of entities that match the search.
func (s *Search) Count() int {
	count := 0
	s.Each(func(types.EntityID) bool {
		count++
		return true
	})
	return count
}

// First returns the first entity that matches the search.
func (s *Search) First() (types.EntityID, error) {
	found := false
	var first types.EntityID
	s.Each(func(id types.EntityID) bool {
		first = id
		found = true
		return false
	})
	if !found {
		return 0, eris.Wrap(ErrNoMatchingEntity, "")
	}
	return first, nil
}

// MustFirst returns the first entity that matches the search or panics.
func (s *Search) MustFirst() types.EntityID {
	id, err := s.First()
	if err != nil {
		panic("no entity matches the search")
	}
	return id
}

// Collect returns the ids of all entities that match the search.
func (s *Search) Collect() []types.EntityID {
	ids := make([]types.EntityID, 0)
	s.Each(func(id types.EntityID) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
