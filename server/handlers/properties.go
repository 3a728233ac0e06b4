package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
	"github.com/openlot/openlot/openlot/services"
	webmodels "github.com/openlot/openlot/server/models"
	"github.com/openlot/openlot/server/utils"
)

const maxPhotoSize = 10 << 20 // 10 MiB

// PropertiesCreate creates a draft property owned by the caller.
func PropertiesCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		var req webmodels.PropertyRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if details := utils.ValidateProperty(req); len(details) > 0 {
			return utils.SendUnprocessableEntity(c, "Validation failed", details)
		}

		property := &models.Property{
			OwnerID:     user.ID,
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Kind:        models.PropertyKind(req.Kind),
			Status:      models.PropertyStatusDraft,
			Country:     req.Country,
			City:        req.City,
			Street:      req.Street,
			Lat:         req.Lat,
			Lon:         req.Lon,
			AreaSqm:     req.AreaSqm,
			Rooms:       req.Rooms,
			YearBuilt:   req.YearBuilt,
		}

		if err := webApp.App.PropertyRepository.Create(c.Context(), property); err != nil {
			slog.Error("Failed to create property", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to create property")
		}

		return utils.SendCreated(c, property, "Property created")
	}
}

// PropertiesDetail returns one property by id.
func PropertiesDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid property id", nil)
		}

		property, err := webApp.App.PropertyRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Property not found")
			}
			slog.Error("Failed to get property", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to get property")
		}

		return utils.SendSuccess(c, property, "")
	}
}

// PropertiesUpdate updates a property. Only the owner (or an admin) may
// change it, and only while it is not under auction.
func PropertiesUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid property id", nil)
		}

		property, err := webApp.App.PropertyRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Property not found")
			}
			return utils.SendInternalServerError(c, "Failed to get property")
		}

		if property.OwnerID != user.ID && !utils.IsAdmin(c) {
			return utils.SendForbidden(c, "Not your property")
		}

		live, err := webApp.App.AuctionRepository.GetLiveByProperty(c.Context(), property.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to check auctions")
		}
		if live != nil {
			return utils.SendConflict(c, "Property has an open auction", nil)
		}

		var req webmodels.PropertyRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if details := utils.ValidateProperty(req); len(details) > 0 {
			return utils.SendUnprocessableEntity(c, "Validation failed", details)
		}

		property.Title = strings.TrimSpace(req.Title)
		property.Description = req.Description
		property.Kind = models.PropertyKind(req.Kind)
		property.Country = req.Country
		property.City = req.City
		property.Street = req.Street
		property.Lat = req.Lat
		property.Lon = req.Lon
		property.AreaSqm = req.AreaSqm
		property.Rooms = req.Rooms
		property.YearBuilt = req.YearBuilt

		if err := webApp.App.PropertyRepository.Update(c.Context(), property); err != nil {
			slog.Error("Failed to update property", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to update property")
		}

		webApp.App.SearchService.Invalidate()
		return utils.SendSuccess(c, property, "Property updated")
	}
}

// PropertiesList searches listed properties with filters and pagination.
func PropertiesList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters := repositories.PropertyFilters{
			Query:    c.Query("q"),
			Kind:     models.PropertyKind(c.Query("kind")),
			Status:   models.PropertyStatusListed,
			City:     c.Query("city"),
			Country:  c.Query("country"),
			RoomsMin: c.QueryInt("rooms_min"),
			RoomsMax: c.QueryInt("rooms_max"),
			AreaMin:  c.QueryFloat("area_min"),
			AreaMax:  c.QueryFloat("area_max"),
			PriceMin: int64(c.QueryInt("price_min")),
			PriceMax: int64(c.QueryInt("price_max")),
			SortBy:   c.Query("sort"),
			SortDesc: c.Query("order", "desc") == "desc",
			Page:     c.QueryInt("page", 1),
			PerPage:  c.QueryInt("per_page"),
		}

		// Authenticated callers can scope the search to their own
		// properties, which also lifts the listed-only restriction.
		if user, ok := utils.CurrentUser(c); ok && c.QueryBool("mine") {
			filters.OwnerID = user.ID
			filters.Status = models.PropertyStatus(c.Query("status"))
		}

		filters.Normalize()

		properties, total, err := webApp.App.PropertyRepository.Search(c.Context(), filters)
		if err != nil {
			slog.Error("Failed to search properties", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to search properties")
		}

		pagination := webmodels.NewPaginationInfo(filters.Page, filters.PerPage, int64(total))
		return utils.SendPaginated(c, properties, pagination, "")
	}
}

// PropertiesMine lists every property the caller owns, any status.
func PropertiesMine(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		properties, err := webApp.App.PropertyRepository.ListByOwner(c.Context(), user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list properties")
		}
		return utils.SendSuccess(c, properties, "")
	}
}

// PropertiesPublish moves a draft property to listed.
func PropertiesPublish(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid property id", nil)
		}

		property, err := webApp.App.PropertyRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Property not found")
			}
			return utils.SendInternalServerError(c, "Failed to get property")
		}
		if property.OwnerID != user.ID {
			return utils.SendForbidden(c, "Not your property")
		}
		if property.Status != models.PropertyStatusDraft {
			return utils.SendConflict(c, "Only draft properties can be published", nil)
		}

		property.Status = models.PropertyStatusListed
		if err := webApp.App.PropertyRepository.Update(c.Context(), property); err != nil {
			return utils.SendInternalServerError(c, "Failed to publish property")
		}

		webApp.App.SearchService.Invalidate()
		return utils.SendSuccess(c, property, "Property listed")
	}
}

// PropertiesArchive takes a property off the market.
func PropertiesArchive(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid property id", nil)
		}

		property, err := webApp.App.PropertyRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Property not found")
			}
			return utils.SendInternalServerError(c, "Failed to get property")
		}
		if property.OwnerID != user.ID && !utils.IsAdmin(c) {
			return utils.SendForbidden(c, "Not your property")
		}

		live, err := webApp.App.AuctionRepository.GetLiveByProperty(c.Context(), property.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to check auctions")
		}
		if live != nil {
			return utils.SendConflict(c, "Property has an open auction", nil)
		}

		if err := webApp.App.PropertyRepository.Archive(c.Context(), property.ID); err != nil {
			return utils.SendInternalServerError(c, "Failed to archive property")
		}

		webApp.App.SearchService.Invalidate()
		return utils.SendNoContent(c)
	}
}

// PropertiesSuggest serves typeahead suggestions from the fuzzy index.
func PropertiesSuggest(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		suggestions, err := webApp.App.SearchService.Suggest(c.Context(), c.Query("q"))
		if err != nil {
			slog.Error("Failed to get suggestions", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to get suggestions")
		}
		return utils.SendSuccess(c, suggestions, "")
	}
}

// PropertiesUploadPhoto stores a photo in object storage and appends its
// key to the property.
func PropertiesUploadPhoto(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid property id", nil)
		}

		property, err := webApp.App.PropertyRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Property not found")
			}
			return utils.SendInternalServerError(c, "Failed to get property")
		}
		if property.OwnerID != user.ID {
			return utils.SendForbidden(c, "Not your property")
		}

		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return utils.SendBadRequest(c, "Missing photo file", nil)
		}
		if fileHeader.Size > maxPhotoSize {
			return utils.SendBadRequest(c, "Photo is too large", nil)
		}

		file, err := fileHeader.Open()
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to read photo")
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		key := webApp.App.SpacesService.ObjectKey("photos", user.ID,
			fmt.Sprintf("%d-%s%s", property.ID, uuid.NewString(), ext))

		contentType := fileHeader.Header.Get("Content-Type")
		if err := webApp.App.SpacesService.Upload(c.Context(), key, contentType, file); err != nil {
			slog.Error("Failed to upload photo", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to upload photo")
		}

		if err := webApp.App.PropertyRepository.AddPhotoKey(c.Context(), property.ID, key); err != nil {
			return utils.SendInternalServerError(c, "Failed to attach photo")
		}

		return utils.SendCreated(c, fiber.Map{"key": key}, "Photo uploaded")
	}
}

// PropertiesValuation estimates a property's value from comparable sales.
func PropertiesValuation(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid property id", nil)
		}

		property, err := webApp.App.PropertyRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Property not found")
			}
			return utils.SendInternalServerError(c, "Failed to get property")
		}

		valuation, err := webApp.App.ValuationService.Estimate(c.Context(), property)
		if err != nil {
			if errors.Is(err, services.ErrNotEnoughComparables) {
				return utils.SendNotFound(c, "Not enough comparable sales for an estimate")
			}
			slog.Error("Failed to estimate property value", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to estimate value")
		}

		return utils.SendSuccess(c, valuation, "")
	}
}

// PortfolioValuation values every property the caller owns.
func PortfolioValuation(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		properties, err := webApp.App.PropertyRepository.ListByOwner(c.Context(), user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list properties")
		}

		valuations, err := webApp.App.ValuationService.EstimateMany(c.Context(), properties)
		if err != nil {
			slog.Error("Failed to value portfolio", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to value portfolio")
		}

		return utils.SendSuccess(c, valuations, "")
	}
}
