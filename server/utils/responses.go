package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/openlot/database/models"
	webmodels "github.com/openlot/openlot/server/models"
)

// SendJSON sends a JSON response using Fiber.
func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

// SendSuccess sends a successful JSON response.
func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	response := webmodels.NewSuccessResponse(data, message)
	return SendJSON(c, http.StatusOK, response)
}

// SendCreated sends a created resource JSON response.
func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	response := webmodels.NewSuccessResponse(data, message)
	return SendJSON(c, http.StatusCreated, response)
}

// SendError sends an error JSON response.
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	response := webmodels.NewErrorResponse(code, message, details)
	return SendJSON(c, statusCode, response)
}

// SendBadRequest sends a bad request error response.
func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

// SendUnauthorized sends an unauthorized error response.
func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// SendForbidden sends a forbidden error response.
func SendForbidden(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

// SendNotFound sends a not found error response.
func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// SendConflict sends a conflict error response.
func SendConflict(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusConflict, "CONFLICT", message, details)
}

// SendInternalServerError sends an internal server error response.
func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

// SendUnprocessableEntity sends an unprocessable entity error response.
func SendUnprocessableEntity(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, details)
}

// SendPaginated sends a paginated JSON response.
func SendPaginated(c *fiber.Ctx, data interface{}, pagination *webmodels.PaginationInfo, message string) error {
	response := webmodels.NewPaginatedResponse(data, pagination, message)
	return SendJSON(c, http.StatusOK, response)
}

// SendNoContent sends a no content response.
func SendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(http.StatusNoContent)
}

// CurrentUser extracts the authenticated user from the Fiber context.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	value := c.Locals("user")
	if value == nil {
		return nil, false
	}

	user, ok := value.(*models.User)
	return user, ok
}

// IsAdmin checks if the current user is an admin.
func IsAdmin(c *fiber.Ctx) bool {
	user, ok := CurrentUser(c)
	if !ok {
		return false
	}
	return user.Role == models.RoleAdmin
}

// GetIPAddress extracts the client IP address.
func GetIPAddress(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.IP()
}
