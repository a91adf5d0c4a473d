// Package wql parses the whirlwind query language. A query names component
// sets with HAS(...), ONLY(...) and ALL(), combines them with ! & and |, and
// compiles down to a filter.ComponentFilter.
package wql

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/filter"
	"pkg.whirlwind.dev/whirlwind/types"
)

type wqlOperator int

const (
	opAnd wqlOperator = iota
	opOr
)

var operatorMap = map[string]wqlOperator{"&": opAnd, "|": opOr}

// Capture tells the parser library how to transform a parsed string token
// into the operator type.
func (o *wqlOperator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	operator, ok := operatorMap[s[0]]
	if !ok {
		return eris.New("invalid operator")
	}
	*o = operator
	return nil
}

type wqlComponent struct {
	Name string `@Ident`
}

type wqlAll struct{}

func (a *wqlAll) Capture(values []string) error {
	if values[0] == "ALL" && values[1] == "(" && values[2] == ")" {
		*a = wqlAll{}
	}
	return nil
}

type wqlNot struct {
	SubExpression *wqlValue `"!" @@`
}

type wqlOnly struct {
	Components []*wqlComponent `"ONLY""(" (@@",")* @@ ")"`
}

type wqlHas struct {
	Components []*wqlComponent `"HAS" "(" (@@",")* @@ ")"`
}

type wqlValue struct {
	All           *wqlAll  `@("ALL" "(" ")")`
	Only          *wqlOnly `| @@`
	Has           *wqlHas  `| @@`
	Not           *wqlNot  `| @@`
	Subexpression *wqlTerm `| "(" @@ ")"`
}

type wqlFactor struct {
	Base *wqlValue `@@`
}

type wqlOpFactor struct {
	Operator wqlOperator `@("&" | "|")`
	Factor   *wqlFactor  `@@`
}

type wqlTerm struct {
	Left  *wqlFactor     `@@`
	Right []*wqlOpFactor `@@*`
}

// Display

func (o wqlOperator) String() string {
	switch o {
	case opAnd:
		return "&"
	case opOr:
		return "|"
	}
	panic("unsupported operator")
}

func (a *wqlAll) String() string {
	return "ALL()"
}

func (e *wqlOnly) String() string {
	parameters := ""
	for i, comp := range e.Components {
		parameters += comp.Name
		if i < len(e.Components)-1 {
			parameters += ", "
		}
	}
	return "ONLY(" + parameters + ")"
}

func (e *wqlHas) String() string {
	parameters := ""
	for i, comp := range e.Components {
		parameters += comp.Name
		if i < len(e.Components)-1 {
			parameters += ", "
		}
	}
	return "HAS(" + parameters + ")"
}

func (v *wqlValue) String() string {
	//nolint: gocritic,nestif // its ok.
	if v.Only != nil {
		return v.Only.String()
	} else if v.Has != nil {
		return v.Has.String()
	} else if v.All != nil {
		return v.All.String()
	} else if v.Not != nil {
		return "!(" + v.Not.SubExpression.String() + ")"
	} else if v.Subexpression != nil {
		return "(" + v.Subexpression.String() + ")"
	} else {
		panic("logic error displaying WQL ast. Check the code in wql.go")
	}
}

func (f *wqlFactor) String() string {
	return f.Base.String()
}

func (o *wqlOpFactor) String() string {
	return o.Operator.String() + " " + o.Factor.String()
}

func (t *wqlTerm) String() string {
	out := []string{t.Left.String()}
	for _, r := range t.Right {
		out = append(out, r.String())
	}
	return strings.Join(out, " ")
}

var internalWQLParser = participle.MustBuild[wqlTerm]()

func valueToComponentFilter(value *wqlValue, stringToComponent func(string) (types.Component, error)) (
	filter.ComponentFilter, error,
) {
	if value.Not != nil { //nolint:gocritic,nestif // its fine.
		resultFilter, err := valueToComponentFilter(value.Not.SubExpression, stringToComponent)
		if err != nil {
			return nil, err
		}
		return filter.Not(resultFilter), nil
	} else if value.Only != nil {
		if len(value.Only.Components) == 0 {
			return nil, eris.New("ONLY cannot have zero parameters")
		}
		components, err := lookupComponents(value.Only.Components, stringToComponent)
		if err != nil {
			return nil, err
		}
		return filter.Exact(components...), nil
	} else if value.All != nil {
		return filter.All(), nil
	} else if value.Has != nil {
		if len(value.Has.Components) == 0 {
			return nil, eris.New("HAS cannot have zero parameters")
		}
		components, err := lookupComponents(value.Has.Components, stringToComponent)
		if err != nil {
			return nil, err
		}
		return filter.Contains(components...), nil
	} else if value.Subexpression != nil {
		return termToComponentFilter(value.Subexpression, stringToComponent)
	} else {
		return nil, eris.New("unknown error during conversion from WQL AST to ComponentFilter")
	}
}

func lookupComponents(
	names []*wqlComponent,
	stringToComponent func(string) (types.Component, error),
) ([]filter.ComponentWrapper, error) {
	components := make([]filter.ComponentWrapper, 0, len(names))
	for _, componentName := range names {
		comp, err := stringToComponent(componentName.Name)
		if err != nil {
			return nil, eris.Wrap(err, "")
		}
		components = append(components, filter.ComponentWrapper{Component: comp})
	}
	return components, nil
}

func factorToComponentFilter(factor *wqlFactor, stringToComponent func(string) (types.Component, error)) (
	filter.ComponentFilter, error,
) {
	return valueToComponentFilter(factor.Base, stringToComponent)
}

func opFactorToComponentFilter(
	opFactor *wqlOpFactor,
	stringToComponent func(string) (types.Component, error),
) (*wqlOperator, filter.ComponentFilter, error) {
	resultFilter, err := factorToComponentFilter(opFactor.Factor, stringToComponent)
	if err != nil {
		return nil, nil, err
	}
	return &opFactor.Operator, resultFilter, nil
}

func termToComponentFilter(
	term *wqlTerm, stringToComponent func(string) (types.Component, error),
) (filter.ComponentFilter, error) {
	if term.Left == nil {
		return nil, eris.New("not enough values in expression")
	}
	acc, err := factorToComponentFilter(term.Left, stringToComponent)
	if err != nil {
		return nil, err
	}
	var seen *wqlOperator
	for _, opFactor := range term.Right {
		operator, resultFilter, err := opFactorToComponentFilter(opFactor, stringToComponent)
		if err != nil {
			return nil, err
		}
		// & and | carry no precedence relative to each other, so mixing them
		// in one unparenthesized chain is ambiguous and rejected.
		if seen != nil && *seen != *operator {
			return nil, eris.Errorf("mixing %s and %s requires parentheses", seen, operator)
		}
		seen = operator
		switch *operator {
		case opAnd:
			acc = filter.And(acc, resultFilter)
		case opOr:
			acc = filter.Or(acc, resultFilter)
		default:
			return nil, eris.New("invalid operator")
		}
	}
	return acc, nil
}

// Parse compiles a WQL query into a component filter. The stringToComponent
// callback resolves component names to whatever the caller has registered;
// its error is returned as-is wrapped, so unknown names surface to the user.
func Parse(
	wqlText string, stringToComponent func(string) (types.Component, error),
) (filter.ComponentFilter, error) {
	term, err := internalWQLParser.ParseString("", wqlText)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return termToComponentFilter(term, stringToComponent)
}
