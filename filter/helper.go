package filter

import (
	"pkg.whirlwind.dev/whirlwind/types"
)

// MatchComponentMetadata returns true if the given slice of components contains the given component.
// Components are the same if they have the same Name.
func MatchComponentMetadata(
	components []types.ComponentMetadata,
	cType types.ComponentMetadata,
) bool {
	for _, c := range components {
		if cType.Name() == c.Name() {
			return true
		}
	}
	return false
}

// MatchComponent returns true if the given slice of components contains the given component.
// Components are the same if they have the same Name.
func MatchComponent(
	components []types.Component,
	cType types.Component,
) bool {
	for _, c := range components {
		if cType.Name() == c.Name() {
			return true
		}
	}
	return false
}

func toComponents(wrappers []ComponentWrapper) []types.Component {
	comps := make([]types.Component, 0, len(wrappers))
	for _, w := range wrappers {
		comps = append(comps, w.Component)
	}
	return comps
}
