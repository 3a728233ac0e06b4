package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/openlot/database/repositories"
	"github.com/openlot/openlot/server/utils"
)

// NotificationsList returns the caller's notifications, newest first.
// Pass unread=true to only see unread ones.
func NotificationsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		notifications, err := webApp.App.NotificationRepository.ListByUser(c.Context(), user.ID,
			c.QueryBool("unread"), c.QueryInt("limit"))
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list notifications")
		}
		return utils.SendSuccess(c, notifications, "")
	}
}

// NotificationsMarkRead marks one notification read.
func NotificationsMarkRead(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid notification id", nil)
		}

		if err := webApp.App.NotificationRepository.MarkRead(c.Context(), int64(id), user.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Notification not found")
			}
			return utils.SendInternalServerError(c, "Failed to mark notification read")
		}
		return utils.SendSuccess(c, nil, "Notification marked read")
	}
}

// NotificationsMarkAllRead marks every unread notification read.
func NotificationsMarkAllRead(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		count, err := webApp.App.NotificationRepository.MarkAllRead(c.Context(), user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to mark notifications read")
		}
		return utils.SendSuccess(c, fiber.Map{"marked": count}, "Notifications marked read")
	}
}
