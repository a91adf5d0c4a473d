package server

import (
	"github.com/gofiber/fiber/v2"

	"pkg.whirlwind.dev/whirlwind/types"
)

type WQLQueryRequest struct {
	WQL string
}

type WQLQueryResponse struct {
	Results types.DebugState `json:"results"`
}

// PostWQL evaluates a WQL (whirlwind query language) expression and returns
// every matching entity with the JSON encoding of its components. A query
// that fails to parse, or that names an unregistered component, is a 400.
func PostWQL(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(WQLQueryRequest)
		if err := ctx.BodyParser(req); err != nil {
			return err
		}

		componentFilter, err := provider.ParseFilter(req.WQL)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := provider.DebugState(componentFilter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return ctx.JSON(WQLQueryResponse{Results: result})
	}
}
