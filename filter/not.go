package filter

import (
	"pkg.whirlwind.dev/whirlwind/types"
)

type not struct {
	filter ComponentFilter
}

// Not matches entities that do not match the given filter.
func Not(filter ComponentFilter) ComponentFilter {
	return &not{filter: filter}
}

func (f *not) MatchesComponents(components []types.Component) bool {
	return !f.filter.MatchesComponents(components)
}
