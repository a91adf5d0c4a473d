package filter_test

import (
	"testing"

	"pkg.whirlwind.dev/whirlwind/assert"
	"pkg.whirlwind.dev/whirlwind/filter"
	"pkg.whirlwind.dev/whirlwind/types"
)

type alpha struct{}

func (alpha) Name() string { return "alpha" }

type beta struct{}

func (beta) Name() string { return "beta" }

type gamma struct{}

func (gamma) Name() string { return "gamma" }

func comps(cs ...types.Component) []types.Component { return cs }

func TestFilter_All(t *testing.T) {
	f := filter.All()
	assert.True(t, f.MatchesComponents(comps()))
	assert.True(t, f.MatchesComponents(comps(alpha{})))
	assert.True(t, f.MatchesComponents(comps(alpha{}, beta{})))
}

func TestFilter_Contains(t *testing.T) {
	f := filter.Contains(filter.Component[alpha](), filter.Component[beta]())

	assert.True(t, f.MatchesComponents(comps(alpha{}, beta{})))
	// Extra components are fine.
	assert.True(t, f.MatchesComponents(comps(alpha{}, beta{}, gamma{})))
	// Missing one of the required components is not.
	assert.False(t, f.MatchesComponents(comps(alpha{})))
	assert.False(t, f.MatchesComponents(comps()))
}

func TestFilter_Exact(t *testing.T) {
	f := filter.Exact(filter.Component[alpha](), filter.Component[beta]())

	assert.True(t, f.MatchesComponents(comps(alpha{}, beta{})))
	// Order does not matter.
	assert.True(t, f.MatchesComponents(comps(beta{}, alpha{})))
	// More or fewer components both fail.
	assert.False(t, f.MatchesComponents(comps(alpha{}, beta{}, gamma{})))
	assert.False(t, f.MatchesComponents(comps(alpha{})))
}

func TestFilter_Not(t *testing.T) {
	f := filter.Not(filter.Contains(filter.Component[alpha]()))

	assert.False(t, f.MatchesComponents(comps(alpha{})))
	assert.True(t, f.MatchesComponents(comps(beta{})))
	assert.True(t, f.MatchesComponents(comps()))
}

func TestFilter_AndOr(t *testing.T) {
	hasAlpha := filter.Contains(filter.Component[alpha]())
	hasBeta := filter.Contains(filter.Component[beta]())

	and := filter.And(hasAlpha, hasBeta)
	assert.True(t, and.MatchesComponents(comps(alpha{}, beta{})))
	assert.False(t, and.MatchesComponents(comps(alpha{})))

	or := filter.Or(hasAlpha, hasBeta)
	assert.True(t, or.MatchesComponents(comps(alpha{})))
	assert.True(t, or.MatchesComponents(comps(beta{})))
	assert.False(t, or.MatchesComponents(comps(gamma{})))
}

func TestFilter_Composition(t *testing.T) {
	// alpha AND NOT (beta OR gamma)
	f := filter.And(
		filter.Contains(filter.Component[alpha]()),
		filter.Not(filter.Or(
			filter.Contains(filter.Component[beta]()),
			filter.Contains(filter.Component[gamma]()),
		)),
	)

	assert.True(t, f.MatchesComponents(comps(alpha{})))
	assert.False(t, f.MatchesComponents(comps(alpha{}, beta{})))
	assert.False(t, f.MatchesComponents(comps(alpha{}, gamma{})))
	assert.False(t, f.MatchesComponents(comps(beta{})))
}

func TestMatchComponent(t *testing.T) {
	assert.True(t, filter.MatchComponent(comps(alpha{}, beta{}), alpha{}))
	assert.False(t, filter.MatchComponent(comps(beta{}), alpha{}))
	assert.False(t, filter.MatchComponent(comps(), alpha{}))
}
