package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/openlot/database/repositories"
	"github.com/openlot/openlot/server/utils"
)

// AuthRequired resolves the bearer token to a user and stores it in the
// request context. Expired sessions are deleted on sight.
func AuthRequired(users repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		session, err := users.GetSession(c.Context(), token)
		if err != nil {
			slog.Debug("Auth required: no valid session", slog.Any("error", err))
			return utils.SendUnauthorized(c, "Invalid or expired token")
		}

		if session.Expired(time.Now()) {
			_ = users.DeleteSession(c.Context(), token)
			return utils.SendUnauthorized(c, "Invalid or expired token")
		}

		user, err := users.GetByID(c.Context(), session.UserID)
		if err != nil {
			slog.Warn("Auth required: session user missing",
				slog.Int64("user_id", session.UserID))
			return utils.SendUnauthorized(c, "Invalid or expired token")
		}

		c.Locals("user", user)
		c.Locals("token", token)

		return c.Next()
	}
}

// OptionalAuth resolves the bearer token when one is present but lets
// anonymous requests through. Handlers see the user via Locals if the
// token was valid.
func OptionalAuth(users repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}

		session, err := users.GetSession(c.Context(), token)
		if err != nil || session.Expired(time.Now()) {
			return c.Next()
		}

		if user, err := users.GetByID(c.Context(), session.UserID); err == nil {
			c.Locals("user", user)
			c.Locals("token", token)
		}
		return c.Next()
	}
}

// AdminRequired ensures the authenticated user has the admin role. Must
// run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := utils.CurrentUser(c)
		if !ok {
			slog.Warn("Admin required: no user in context")
			return utils.SendForbidden(c, "Access denied")
		}

		if !utils.IsAdmin(c) {
			slog.Warn("Admin required: user lacks admin role",
				slog.Int64("user_id", user.ID),
				slog.String("role", string(user.Role)))
			return utils.SendForbidden(c, "Admin access required")
		}

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
