package auction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/notifications"
)

// Notifier turns auction events into user notifications. Failures are
// logged and swallowed so a notification problem never unwinds a bid or
// a finalized auction.
type Notifier struct {
	service *notifications.Service
}

func NewNotifier(service *notifications.Service) *Notifier {
	return &Notifier{service: service}
}

func (n *Notifier) NotifyOutbid(ctx context.Context, auction *models.Auction, previousBidder, newAmount int64) {
	if previousBidder == 0 {
		return
	}

	err := n.service.Notify(ctx, previousBidder, models.NotificationOutbid,
		fmt.Sprintf("You were outbid on auction %s", auction.Code),
		fmt.Sprintf("A new bid of %d was placed. The auction ends at %s.", newAmount, auction.EndTime.Format("15:04 Jan 2")),
		map[string]any{
			"auction_id": auction.ID,
			"code":       auction.Code,
			"amount":     newAmount,
		})
	if err != nil {
		slog.Error("Failed to notify outbid bidder",
			slog.Int64("auction_id", auction.ID),
			slog.Int64("user_id", previousBidder),
			slog.Any("error", err))
	}
}

func (n *Notifier) NotifyExtended(ctx context.Context, auction *models.Auction) {
	err := n.service.Notify(ctx, auction.SellerID, models.NotificationAuctionExtended,
		fmt.Sprintf("Auction %s was extended", auction.Code),
		fmt.Sprintf("A late bid pushed the end time to %s.", auction.EndTime.Format("15:04 Jan 2")),
		map[string]any{
			"auction_id": auction.ID,
			"code":       auction.Code,
			"end_time":   auction.EndTime,
			"extensions": auction.Extensions,
		})
	if err != nil {
		slog.Error("Failed to notify auction extension",
			slog.Int64("auction_id", auction.ID),
			slog.Any("error", err))
	}
}

// NotifyOutcome tells the winner and the seller how the auction ended.
func (n *Notifier) NotifyOutcome(ctx context.Context, auction *models.Auction) {
	payload := map[string]any{
		"auction_id":  auction.ID,
		"code":        auction.Code,
		"final_price": auction.CurrentPrice,
	}

	if auction.Status == models.AuctionStatusSold {
		err := n.service.Notify(ctx, auction.TopBidderID, models.NotificationAuctionWon,
			fmt.Sprintf("You won auction %s", auction.Code),
			fmt.Sprintf("Your bid of %d won. A contract has been drawn up for you.", auction.CurrentPrice),
			payload)
		if err != nil {
			slog.Error("Failed to notify auction winner",
				slog.Int64("auction_id", auction.ID),
				slog.Any("error", err))
		}

		err = n.service.Notify(ctx, auction.SellerID, models.NotificationAuctionSold,
			fmt.Sprintf("Auction %s sold", auction.Code),
			fmt.Sprintf("Your property sold for %d.", auction.CurrentPrice),
			payload)
		if err != nil {
			slog.Error("Failed to notify auction seller",
				slog.Int64("auction_id", auction.ID),
				slog.Any("error", err))
		}
		return
	}

	err := n.service.Notify(ctx, auction.SellerID, models.NotificationAuctionClosed,
		fmt.Sprintf("Auction %s closed without bids", auction.Code),
		"No bids were placed before the end time.",
		payload)
	if err != nil {
		slog.Error("Failed to notify auction close",
			slog.Int64("auction_id", auction.ID),
			slog.Any("error", err))
	}
}

// NotifyLost tells every losing bidder how the auction ended. The winner
// is skipped since NotifyOutcome already covered them.
func (n *Notifier) NotifyLost(ctx context.Context, auction *models.Auction, bidderIDs []int64) {
	payload := map[string]any{
		"auction_id":  auction.ID,
		"code":        auction.Code,
		"final_price": auction.CurrentPrice,
	}

	for _, bidderID := range bidderIDs {
		if bidderID == auction.TopBidderID {
			continue
		}
		err := n.service.Notify(ctx, bidderID, models.NotificationAuctionLost,
			fmt.Sprintf("Auction %s has ended", auction.Code),
			fmt.Sprintf("The property sold for %d to another bidder.", auction.CurrentPrice),
			payload)
		if err != nil {
			slog.Error("Failed to notify losing bidder",
				slog.Int64("auction_id", auction.ID),
				slog.Int64("user_id", bidderID),
				slog.Any("error", err))
		}
	}
}
