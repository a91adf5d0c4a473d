package filter

import (
	"pkg.whirlwind.dev/whirlwind/types"
)

type and struct {
	filters []ComponentFilter
}

// And matches entities that match every one of the given filters.
func And(filters ...ComponentFilter) ComponentFilter {
	return &and{filters: filters}
}

func (f *and) MatchesComponents(components []types.Component) bool {
	for _, filter := range f.filters {
		if !filter.MatchesComponents(components) {
			return false
		}
	}
	return true
}
