package server

import (
	"github.com/gofiber/fiber/v2"

	"pkg.whirlwind.dev/whirlwind/filter"
)

// GetDebugState dumps every entity in the world along with the JSON encoding
// of each of its components.
func GetDebugState(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		result, err := provider.DebugState(filter.All())
		if err != nil {
			return err
		}
		return ctx.JSON(&result)
	}
}
