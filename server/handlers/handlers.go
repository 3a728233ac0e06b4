package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/openlot"
	webmodels "github.com/openlot/openlot/server/models"
	"github.com/openlot/openlot/server/utils"
)

// WebApp hands the wired application to the HTTP handlers.
type WebApp struct {
	App *openlot.App
}

// HealthCheck reports the server and database status.
func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.App.Version)

		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		if err := webApp.App.DB.Ping(ctx); err != nil {
			health.AddComponent("database", "unhealthy", err.Error())
		} else {
			health.AddComponent("database", "healthy", "")
		}

		status := fiber.StatusOK
		if health.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return utils.SendJSON(c, status, health)
	}
}
