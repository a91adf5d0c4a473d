package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetDebugResources dumps every registered resource along with its JSON
// encoding.
func GetDebugResources(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		result, err := provider.DebugResources()
		if err != nil {
			return err
		}
		return ctx.JSON(&result)
	}
}
