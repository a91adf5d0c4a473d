package filter

import (
	"pkg.whirlwind.dev/whirlwind/types"
)

type all struct {
}

// All matches every entity, whatever components it holds.
func All() ComponentFilter {
	return &all{}
}

func (f *all) MatchesComponents(_ []types.Component) bool {
	return true
}
