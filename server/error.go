package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body every failed request carries.
type ErrorResponse struct {
	Error Error `json:"error"`
}

type Error struct {
	Message string `json:"message"`
}

// ErrorHandler converts errors bubbling out of handlers into ErrorResponse
// bodies. fiber.Errors keep their status code, anything else is a 500.
var ErrorHandler = func(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	return ctx.Status(code).JSON(ErrorResponse{
		Error: Error{
			Message: err.Error(),
		},
	})
}
