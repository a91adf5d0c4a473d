package filter

import (
	"pkg.whirlwind.dev/whirlwind/types"
)

type or struct {
	filters []ComponentFilter
}

// Or matches entities that match at least one of the given filters.
func Or(filters ...ComponentFilter) ComponentFilter {
	return &or{filters: filters}
}

func (f *or) MatchesComponents(components []types.Component) bool {
	for _, filter := range f.filters {
		if filter.MatchesComponents(components) {
			return true
		}
	}
	return false
}
