package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
	webmodels "github.com/openlot/openlot/server/models"
	"github.com/openlot/openlot/server/utils"
)

// ThreadsCreate opens a message thread between the caller and the listed
// participants, optionally tied to a property.
func ThreadsCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		var req webmodels.ThreadCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if len(req.ParticipantIDs) == 0 {
			return utils.SendBadRequest(c, "At least one participant is required", nil)
		}

		// The caller is always a participant, exactly once.
		participants := []int64{user.ID}
		for _, id := range req.ParticipantIDs {
			if id != user.ID && id > 0 {
				participants = append(participants, id)
			}
		}
		if len(participants) < 2 {
			return utils.SendBadRequest(c, "Cannot open a thread with yourself only", nil)
		}

		thread := &models.MessageThread{
			Subject:    strings.TrimSpace(req.Subject),
			PropertyID: req.PropertyID,
			CreatedBy:  user.ID,
		}
		if err := webApp.App.MessageRepository.CreateThread(c.Context(), thread, participants); err != nil {
			slog.Error("Failed to create thread", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to create thread")
		}

		return utils.SendCreated(c, thread, "Thread created")
	}
}

// ThreadsMine lists the caller's threads, most recently active first.
func ThreadsMine(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		threads, err := webApp.App.MessageRepository.ListThreadsByUser(c.Context(), user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list threads")
		}
		return utils.SendSuccess(c, threads, "")
	}
}

// ThreadsMessages lists the messages of a thread the caller belongs to.
func ThreadsMessages(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		threadID, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid thread id", nil)
		}

		ok, err := webApp.App.MessageRepository.IsParticipant(c.Context(), int64(threadID), user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to check thread access")
		}
		if !ok {
			return utils.SendForbidden(c, "Not a participant of this thread")
		}

		messages, err := webApp.App.MessageRepository.ListMessages(c.Context(), int64(threadID),
			c.QueryInt("limit", 50), c.QueryInt("offset"))
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list messages")
		}

		// Reading the thread marks it read for the caller.
		if err := webApp.App.MessageRepository.MarkRead(c.Context(), int64(threadID), user.ID); err != nil {
			slog.Error("Failed to mark thread read", slog.Any("error", err))
		}

		return utils.SendSuccess(c, messages, "")
	}
}

// ThreadsPostMessage appends a message and notifies the other
// participants.
func ThreadsPostMessage(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		threadID, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid thread id", nil)
		}

		var req webmodels.MessageRequest
		if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Body) == "" {
			return utils.SendBadRequest(c, "Message body must not be empty", nil)
		}

		thread, err := webApp.App.MessageRepository.GetThread(c.Context(), int64(threadID))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Thread not found")
			}
			return utils.SendInternalServerError(c, "Failed to get thread")
		}

		ok, err := webApp.App.MessageRepository.IsParticipant(c.Context(), thread.ID, user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to check thread access")
		}
		if !ok {
			return utils.SendForbidden(c, "Not a participant of this thread")
		}

		message := &models.Message{
			ThreadID: thread.ID,
			SenderID: user.ID,
			Body:     strings.TrimSpace(req.Body),
		}
		if err := webApp.App.MessageRepository.AddMessage(c.Context(), message); err != nil {
			slog.Error("Failed to add message", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to send message")
		}

		participants, err := webApp.App.MessageRepository.Participants(c.Context(), thread.ID)
		if err == nil {
			for _, p := range participants {
				if p.UserID == user.ID {
					continue
				}
				err := webApp.App.NotificationService.Notify(c.Context(), p.UserID,
					models.NotificationNewMessage,
					"New message from "+user.Username,
					"",
					map[string]any{"thread_id": thread.ID, "message_id": message.ID})
				if err != nil {
					slog.Error("Failed to notify participant",
						slog.Int64("user_id", p.UserID),
						slog.Any("error", err))
				}
			}
		}

		return utils.SendCreated(c, message, "Message sent")
	}
}
