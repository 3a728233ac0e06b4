package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/openlot/auction"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
	webmodels "github.com/openlot/openlot/server/models"
	"github.com/openlot/openlot/server/utils"
)

// AuctionsCreate drafts a new auction for one of the caller's listed
// properties.
func AuctionsCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		var req webmodels.AuctionCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if details := utils.ValidateAuctionCreate(req); len(details) > 0 {
			return utils.SendUnprocessableEntity(c, "Validation failed", details)
		}

		var startTime time.Time
		if req.StartTime != "" {
			parsed, err := time.Parse(time.RFC3339, req.StartTime)
			if err != nil {
				return utils.SendBadRequest(c, "start_time must be RFC3339", nil)
			}
			startTime = parsed
		}

		created, err := webApp.App.AuctionManager.CreateAuction(c.Context(), auction.CreateParams{
			PropertyID:    req.PropertyID,
			SellerID:      user.ID,
			StartingPrice: req.StartingPrice,
			MinIncrement:  req.MinIncrement,
			StartTime:     startTime,
			Duration:      time.Duration(req.DurationHours) * time.Hour,
			Private:       req.Private,
		})
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return utils.SendNotFound(c, "Property not found")
			case errors.Is(err, auction.ErrNotSeller):
				return utils.SendForbidden(c, "Not your property")
			case errors.Is(err, auction.ErrPropertyBusy):
				return utils.SendConflict(c, "Property already has an open auction", nil)
			case errors.Is(err, auction.ErrBadDuration):
				return utils.SendBadRequest(c, "Auction duration out of range", nil)
			}
			slog.Error("Failed to create auction", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to create auction")
		}

		return utils.SendCreated(c, created, "Auction created")
	}
}

// AuctionsActivate opens a draft auction for bidding.
func AuctionsActivate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid auction id", nil)
		}

		if err := webApp.App.AuctionManager.Activate(c.Context(), int64(id), user.ID); err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return utils.SendNotFound(c, "Auction not found")
			case errors.Is(err, auction.ErrNotSeller):
				return utils.SendForbidden(c, "Only the seller can activate the auction")
			}
			return utils.SendConflict(c, "Auction is not in draft", nil)
		}

		return utils.SendSuccess(c, nil, "Auction activated")
	}
}

// AuctionsCancel cancels an auction before it finalizes.
func AuctionsCancel(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid auction id", nil)
		}

		err = webApp.App.AuctionManager.Cancel(c.Context(), int64(id), user.ID, utils.IsAdmin(c))
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return utils.SendNotFound(c, "Auction not found")
			case errors.Is(err, auction.ErrNotSeller):
				return utils.SendForbidden(c, "Only the seller can cancel the auction")
			}
			return utils.SendConflict(c, "Auction can no longer be cancelled", nil)
		}

		return utils.SendSuccess(c, nil, "Auction cancelled")
	}
}

// AuctionsInvite adds a bidder to a private auction.
func AuctionsInvite(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid auction id", nil)
		}

		var req webmodels.InviteRequest
		if err := c.BodyParser(&req); err != nil || req.UserID <= 0 {
			return utils.SendBadRequest(c, "Invalid invite request", nil)
		}

		err = webApp.App.AuctionManager.Invite(c.Context(), int64(id), user.ID, req.UserID)
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return utils.SendNotFound(c, "Auction not found")
			case errors.Is(err, auction.ErrNotSeller):
				return utils.SendForbidden(c, "Only the seller can invite bidders")
			}
			return utils.SendConflict(c, err.Error(), nil)
		}

		return utils.SendSuccess(c, nil, "Bidder invited")
	}
}

// AuctionsLive lists auctions currently accepting bids.
func AuctionsLive(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		perPage := c.QueryInt("per_page", 20)
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		auctions, total, err := webApp.App.AuctionRepository.GetLive(c.Context(), perPage, (page-1)*perPage)
		if err != nil {
			slog.Error("Failed to list live auctions", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to list auctions")
		}

		pagination := webmodels.NewPaginationInfo(page, perPage, int64(total))
		return utils.SendPaginated(c, auctions, pagination, "")
	}
}

// AuctionsDetail returns one auction by numeric id or public code.
func AuctionsDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		param := c.Params("id")

		// Codes and numeric ids share this route. A code made only of
		// digits parses as an id, so code-shaped params try the code
		// lookup first and fall back to the id on a miss.
		if auction.ValidCode(param) {
			found, err := webApp.App.AuctionRepository.GetByCode(c.Context(), param)
			if err == nil {
				if !canViewAuction(c, found) {
					return utils.SendNotFound(c, "Auction not found")
				}
				return utils.SendSuccess(c, found, "")
			}
			if !errors.Is(err, repositories.ErrNotFound) {
				return utils.SendInternalServerError(c, "Failed to get auction")
			}
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendNotFound(c, "Auction not found")
		}

		found, err := webApp.App.AuctionRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Auction not found")
			}
			return utils.SendInternalServerError(c, "Failed to get auction")
		}
		if !canViewAuction(c, found) {
			return utils.SendNotFound(c, "Auction not found")
		}
		return utils.SendSuccess(c, found, "")
	}
}

// canViewAuction hides private auctions from everyone but the seller,
// the invited bidders and admins. Private auctions answer 404 rather
// than 403 so their existence stays hidden.
func canViewAuction(c *fiber.Ctx, a *models.Auction) bool {
	if !a.Private {
		return true
	}
	user, ok := utils.CurrentUser(c)
	if !ok {
		return false
	}
	return user.ID == a.SellerID || a.Invited(user.ID) || utils.IsAdmin(c)
}

// AuctionsBids lists the bid history of an auction, highest first.
func AuctionsBids(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid auction id", nil)
		}

		found, err := webApp.App.AuctionRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Auction not found")
			}
			return utils.SendInternalServerError(c, "Failed to get auction")
		}
		if !canViewAuction(c, found) {
			return utils.SendNotFound(c, "Auction not found")
		}

		bids, err := webApp.App.AuctionRepository.GetAuctionBids(c.Context(), int64(id))
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list bids")
		}
		return utils.SendSuccess(c, bids, "")
	}
}

// AuctionsPlaceBid places a bid on behalf of the caller.
func AuctionsPlaceBid(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid auction id", nil)
		}

		var req webmodels.BidRequest
		if err := c.BodyParser(&req); err != nil || req.Amount <= 0 {
			return utils.SendBadRequest(c, "Invalid bid amount", nil)
		}

		bid, err := webApp.App.AuctionManager.PlaceBid(c.Context(), int64(id), user.ID, req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return utils.SendNotFound(c, "Auction not found")
			case errors.Is(err, auction.ErrNotOpen),
				errors.Is(err, auction.ErrNotStarted),
				errors.Is(err, auction.ErrEnded):
				return utils.SendConflict(c, err.Error(), nil)
			case errors.Is(err, auction.ErrSellerBid),
				errors.Is(err, auction.ErrNotInvited):
				return utils.SendForbidden(c, err.Error())
			case errors.Is(err, auction.ErrAlreadyTop),
				errors.Is(err, auction.ErrBidTooLow):
				return utils.SendUnprocessableEntity(c, err.Error(), nil)
			}
			slog.Error("Failed to place bid",
				slog.Int("auction_id", id),
				slog.Int64("bidder_id", user.ID),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to place bid")
		}

		return utils.SendCreated(c, bid, "Bid placed")
	}
}

// AuctionsMyBids lists the caller's bids across all auctions.
func AuctionsMyBids(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		bids, err := webApp.App.AuctionRepository.GetUserBids(c.Context(), user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list bids")
		}
		return utils.SendSuccess(c, bids, "")
	}
}
