package handler

import (
	"github.com/gofiber/fiber/v2"

	autherr "github.com/isurusajith68/stockwise-aiims-server/internal/errors"
)

// Response is the envelope every endpoint returns: a status discriminator,
// a human-readable message and an optional payload.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func respond(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// respondError maps a service error onto its outward status category.
// Internal detail leaks only outside production builds.
func respondError(c *fiber.Ctx, err error, production bool) error {
	code := autherr.StatusCode(err)

	status := "fail"
	message := err.Error()
	if code == fiber.StatusInternalServerError {
		status = "error"
		if production {
			message = "Internal server error"
		}
	}

	return c.Status(code).JSON(Response{
		Status:  status,
		Message: message,
	})
}
