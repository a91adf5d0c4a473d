package server

import (
	"github.com/gofiber/fiber/v2"
)

type GetHealthResponse struct {
	IsServerRunning    bool `json:"isServerRunning"`
	IsFrameLoopRunning bool `json:"isFrameLoopRunning"`
}

// GetHealth reports whether the server is up and whether frames are being
// processed.
func GetHealth(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(GetHealthResponse{
			IsServerRunning:    true,
			IsFrameLoopRunning: provider.IsFrameLoopRunning(),
		})
	}
}
