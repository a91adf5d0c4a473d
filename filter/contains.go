package filter

import (
	"pkg.whirlwind.dev/whirlwind/types"
)

type contains struct {
	components []types.Component
}

// Contains matches entities that hold all the components specified.
func Contains(components ...ComponentWrapper) ComponentFilter {
	comps := toComponents(components)
	return &contains{components: comps}
}

func (f *contains) MatchesComponents(components []types.Component) bool {
	for _, componentType := range f.components {
		if !MatchComponent(components, componentType) {
			return false
		}
	}
	return true
}
