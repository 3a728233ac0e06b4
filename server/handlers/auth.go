package handlers

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
	webmodels "github.com/openlot/openlot/server/models"
	"github.com/openlot/openlot/server/utils"
	"golang.org/x/crypto/bcrypt"
)

const defaultSessionTTL = 72 * time.Hour

// userView is the public shape of a user, without credentials.
type userView struct {
	ID       int64           `json:"id"`
	Email    string          `json:"email"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	Verified bool            `json:"verified"`
	Phone    string          `json:"phone,omitempty"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		Verified: u.Verified,
		Phone:    u.Phone,
	}
}

// Register creates a new buyer or seller account.
func Register(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		if details := utils.ValidateRegister(req); len(details) > 0 {
			return utils.SendUnprocessableEntity(c, "Validation failed", details)
		}

		cost := webApp.App.Cfg.Auth.BcryptCost
		if cost <= 0 {
			cost = bcrypt.DefaultCost
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
		if err != nil {
			slog.Error("Failed to hash password", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to create account")
		}

		role := models.UserRole(req.Role)
		if role == "" {
			role = models.RoleBuyer
		}

		user := &models.User{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			Username:     strings.TrimSpace(req.Username),
			PasswordHash: string(hash),
			Role:         role,
			Phone:        req.Phone,
		}

		if err := webApp.App.UserRepository.Create(c.Context(), user); err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				return utils.SendConflict(c, "Email or username already in use", nil)
			}
			slog.Error("Failed to create user", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to create account")
		}

		return utils.SendCreated(c, newUserView(user), "Account created")
	}
}

// Login verifies the password and hands out a bearer token.
func Login(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		user, err := webApp.App.UserRepository.GetByEmail(c.Context(), req.Email)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendUnauthorized(c, "Invalid email or password")
			}
			slog.Error("Failed to look up user", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Login failed")
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return utils.SendUnauthorized(c, "Invalid email or password")
		}

		ttl := defaultSessionTTL
		if hours := webApp.App.Cfg.Auth.SessionTTLHours; hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		}

		session := &models.Session{
			Token:     uuid.NewString(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(ttl),
		}
		if err := webApp.App.UserRepository.CreateSession(c.Context(), session); err != nil {
			slog.Error("Failed to create session", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Login failed")
		}

		return utils.SendSuccess(c, fiber.Map{
			"token":      session.Token,
			"expires_at": session.ExpiresAt,
			"user":       newUserView(user),
		}, "Logged in")
	}
}

// Logout invalidates the current bearer token.
func Logout(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals("token").(string)
		if token != "" {
			if err := webApp.App.UserRepository.DeleteSession(c.Context(), token); err != nil {
				slog.Error("Failed to delete session", slog.Any("error", err))
			}
		}
		return utils.SendSuccess(c, nil, "Logged out")
	}
}

// Me returns the authenticated user.
func Me(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}
		return utils.SendSuccess(c, newUserView(user), "")
	}
}
