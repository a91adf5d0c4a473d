package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetSchedules lists every registered schedule and the names of its systems
// in execution order.
func GetSchedules(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(provider.GetRegisteredSchedules())
	}
}
