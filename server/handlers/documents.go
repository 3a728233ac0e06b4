package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
	webmodels "github.com/openlot/openlot/server/models"
	"github.com/openlot/openlot/server/utils"
)

const (
	maxDocumentSize   = 25 << 20 // 25 MiB
	downloadURLExpiry = 15 * time.Minute
)

// DocumentsUpload stores a legal document in object storage and queues it
// for review. Optional property_id and contract_id form fields link it to
// the entity it verifies.
func DocumentsUpload(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return utils.SendBadRequest(c, "Missing document file", nil)
		}
		if fileHeader.Size > maxDocumentSize {
			return utils.SendBadRequest(c, "Document is too large", nil)
		}

		kind := c.FormValue("kind")
		if kind == "" {
			return utils.SendBadRequest(c, "Missing document kind", nil)
		}

		file, err := fileHeader.Open()
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to read document")
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		key := webApp.App.SpacesService.ObjectKey("documents", user.ID,
			fmt.Sprintf("%s%s", uuid.NewString(), ext))

		contentType := fileHeader.Header.Get("Content-Type")
		if err := webApp.App.SpacesService.Upload(c.Context(), key, contentType, file); err != nil {
			slog.Error("Failed to upload document", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to upload document")
		}

		document := &models.Document{
			OwnerID:     user.ID,
			Kind:        kind,
			PropertyID:  formInt64(c, "property_id"),
			ContractID:  formInt64(c, "contract_id"),
			ObjectKey:   key,
			FileName:    fileHeader.Filename,
			ContentType: contentType,
			SizeBytes:   fileHeader.Size,
		}
		if err := webApp.App.DocumentRepository.Create(c.Context(), document); err != nil {
			slog.Error("Failed to create document record", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to save document")
		}

		return utils.SendCreated(c, document, "Document uploaded")
	}
}

// DocumentsMine lists the caller's documents.
func DocumentsMine(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		documents, err := webApp.App.DocumentRepository.ListByOwner(c.Context(), user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list documents")
		}
		return utils.SendSuccess(c, documents, "")
	}
}

// DocumentsDownload hands out a short-lived presigned URL for a document.
func DocumentsDownload(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid document id", nil)
		}

		document, err := webApp.App.DocumentRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Document not found")
			}
			return utils.SendInternalServerError(c, "Failed to get document")
		}

		if document.OwnerID != user.ID && !utils.IsAdmin(c) {
			return utils.SendForbidden(c, "Not your document")
		}

		url, err := webApp.App.SpacesService.PresignGet(c.Context(), document.ObjectKey, downloadURLExpiry)
		if err != nil {
			slog.Error("Failed to presign document", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to generate download link")
		}

		return utils.SendSuccess(c, fiber.Map{
			"url":        url,
			"expires_in": int(downloadURLExpiry.Seconds()),
		}, "")
	}
}

// DocumentsPending lists documents awaiting review. Admin only.
func DocumentsPending(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		documents, err := webApp.App.DocumentRepository.ListPending(c.Context())
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list pending documents")
		}
		return utils.SendSuccess(c, documents, "")
	}
}

// DocumentsReview approves or rejects a pending document. Admin only.
func DocumentsReview(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reviewer, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid document id", nil)
		}

		var req webmodels.DocumentReviewRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		status := models.DocumentStatus(req.Status)
		if status != models.DocumentStatusApproved && status != models.DocumentStatusRejected {
			return utils.SendBadRequest(c, "Status must be approved or rejected", nil)
		}

		document, err := webApp.App.DocumentRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Document not found")
			}
			return utils.SendInternalServerError(c, "Failed to get document")
		}

		if err := webApp.App.DocumentRepository.Review(c.Context(), document.ID, reviewer.ID, status, req.Note); err != nil {
			return utils.SendConflict(c, err.Error(), nil)
		}

		err = webApp.App.NotificationService.Notify(c.Context(), document.OwnerID,
			models.NotificationDocumentReviewed,
			fmt.Sprintf("Your document %q was %s", document.FileName, status),
			req.Note,
			map[string]any{"document_id": document.ID, "status": string(status)})
		if err != nil {
			slog.Error("Failed to notify document owner", slog.Any("error", err))
		}

		return utils.SendSuccess(c, nil, "Document reviewed")
	}
}

func formInt64(c *fiber.Ctx, field string) int64 {
	value := c.FormValue(field)
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
