package wql

import (
	"reflect"
	"testing"

	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/assert"
	"pkg.whirlwind.dev/whirlwind/filter"
	"pkg.whirlwind.dev/whirlwind/types"
)

type emptyComponent struct{}

func (emptyComponent) Name() string { return "emptyComponent" }

func resolveAny(string) (types.Component, error) {
	return emptyComponent{}, nil
}

func wrap(comp types.Component) filter.ComponentWrapper {
	return filter.ComponentWrapper{Component: comp}
}

func TestParser_AST(t *testing.T) {
	term, err := internalWQLParser.ParseString("", "!(ONLY(a, b) & ONLY(a)) | HAS(b)")
	assert.NilError(t, err)
	testTerm := wqlTerm{
		Left: &wqlFactor{Base: &wqlValue{
			Not: &wqlNot{SubExpression: &wqlValue{
				Subexpression: &wqlTerm{
					Left: &wqlFactor{Base: &wqlValue{
						Only: &wqlOnly{Components: []*wqlComponent{
							{Name: "a"},
							{Name: "b"},
						}},
					}},
					Right: []*wqlOpFactor{{
						Operator: opAnd,
						Factor: &wqlFactor{Base: &wqlValue{
							Only: &wqlOnly{Components: []*wqlComponent{{Name: "a"}}},
						}},
					}},
				},
			}},
		}},
		Right: []*wqlOpFactor{
			{
				Operator: opOr,
				Factor: &wqlFactor{Base: &wqlValue{
					Has: &wqlHas{Components: []*wqlComponent{{Name: "b"}}},
				}},
			},
		},
	}
	assert.DeepEqual(t, testTerm, *term)
	assert.Equal(t, "!((ONLY(a, b) & ONLY(a))) | HAS(b)", term.String())
}

func TestParse_CompilesToFilters(t *testing.T) {
	comp := wrap(emptyComponent{})

	result, err := Parse("!(ONLY(a, b) & ONLY(a)) | HAS(b)", resolveAny)
	assert.NilError(t, err)
	want := filter.Or(
		filter.Not(
			filter.And(
				filter.Exact(comp, comp),
				filter.Exact(comp),
			),
		),
		filter.Contains(comp),
	)
	// reflect.DeepEqual because the filter structs hold unexported fields.
	assert.True(t, reflect.DeepEqual(want, result))

	result, err = Parse("HAS(a) & HAS(a, b) & HAS(a, b, c)", resolveAny)
	assert.NilError(t, err)
	want = filter.And(
		filter.And(
			filter.Contains(comp),
			filter.Contains(comp, comp),
		),
		filter.Contains(comp, comp, comp),
	)
	assert.True(t, reflect.DeepEqual(want, result))
}

func TestParse_All(t *testing.T) {
	result, err := Parse("ALL()", resolveAny)
	assert.NilError(t, err)
	assert.True(t, reflect.DeepEqual(filter.All(), result))

	result, err = Parse("!ALL()", resolveAny)
	assert.NilError(t, err)
	assert.True(t, reflect.DeepEqual(filter.Not(filter.All()), result))
}

func TestParse_MixedOperatorsRequireParentheses(t *testing.T) {
	_, err := Parse("HAS(a) & HAS(b) | HAS(c)", resolveAny)
	assert.ErrorContains(t, err, "requires parentheses")

	_, err = Parse("HAS(a) | HAS(b) & HAS(c)", resolveAny)
	assert.ErrorContains(t, err, "requires parentheses")

	// Parentheses resolve the ambiguity.
	_, err = Parse("(HAS(a) & HAS(b)) | HAS(c)", resolveAny)
	assert.NilError(t, err)
	_, err = Parse("HAS(a) & (HAS(b) | HAS(c))", resolveAny)
	assert.NilError(t, err)

	// Chains of a single operator never need them.
	_, err = Parse("HAS(a) | HAS(b) | HAS(c)", resolveAny)
	assert.NilError(t, err)
}

func TestParse_ZeroParameters(t *testing.T) {
	// The grammar itself requires at least one name inside HAS and ONLY.
	_, err := Parse("HAS()", resolveAny)
	assert.IsError(t, err)
	_, err = Parse("ONLY()", resolveAny)
	assert.IsError(t, err)

	// ASTs built without the parser hit the explicit guard.
	_, err = valueToComponentFilter(&wqlValue{Has: &wqlHas{}}, resolveAny)
	assert.ErrorContains(t, err, "HAS cannot have zero parameters")
	_, err = valueToComponentFilter(&wqlValue{Only: &wqlOnly{}}, resolveAny)
	assert.ErrorContains(t, err, "ONLY cannot have zero parameters")
}

func TestParse_UnknownComponentSurfaces(t *testing.T) {
	resolveNone := func(name string) (types.Component, error) {
		return nil, eris.Errorf("component %q is not registered", name)
	}
	_, err := Parse("HAS(bogus)", resolveNone)
	assert.ErrorContains(t, err, `component "bogus" is not registered`)
}

func TestParse_SyntaxErrors(t *testing.T) {
	for _, query := range []string{
		"",
		"HAS(a) &",
		"& HAS(a)",
		"HAS a",
		"NOPE(a)",
	} {
		_, err := Parse(query, resolveAny)
		assert.IsError(t, err)
	}
}
