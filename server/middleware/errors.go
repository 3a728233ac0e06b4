package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/server/models"
)

// CustomErrorHandler turns unhandled errors into the standard JSON
// envelope. Handlers map domain errors themselves; this is the net
// underneath them.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(models.NewErrorResponse("HTTP_ERROR", message, nil))
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		return c.Next()
	}
}
