package whirlwind

import (
	"pkg.whirlwind.dev/whirlwind/filter"
	"pkg.whirlwind.dev/whirlwind/types"
)

type (
	// EntityID represents a single entity in the World. An EntityID is tied to
	// one or more components.
	EntityID    = types.EntityID
	ComponentID = types.ComponentID
	Component   = types.Component
)

var (
	All      = filter.All
	And      = filter.And
	Or       = filter.Or
	Not      = filter.Not
	Contains = filter.Contains
	Exact    = filter.Exact
)
