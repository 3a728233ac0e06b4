package auction

import (
	"errors"
	"time"

	"github.com/openlot/openlot/openlot/database/models"
)

const (
	DefaultMinIncrement = 1000
	MinAuctionTime      = 1 * time.Hour
	MaxAuctionTime      = 30 * 24 * time.Hour

	// A bid landing within ExtensionWindow of the end pushes the end out
	// by ExtensionStep, up to MaxExtensions times per auction.
	ExtensionWindow = 5 * time.Minute
	ExtensionStep   = 5 * time.Minute
	MaxExtensions   = 12

	CodeLength = 6
	maxRetries = 5
)

var (
	ErrNotOpen      = errors.New("auction is not accepting bids")
	ErrNotStarted   = errors.New("auction has not started yet")
	ErrEnded        = errors.New("auction has already ended")
	ErrSellerBid    = errors.New("seller cannot bid on their own auction")
	ErrAlreadyTop   = errors.New("you are already the highest bidder")
	ErrNotInvited   = errors.New("auction is private and you are not invited")
	ErrBidTooLow    = errors.New("bid is below the minimum valid bid")
	ErrBadDuration  = errors.New("auction duration out of range")
	ErrNotSeller    = errors.New("only the seller can do this")
	ErrPropertyBusy = errors.New("property already has an open auction")
)

// MinimumBid returns the lowest amount the next bid must reach. The first
// bid only has to meet the starting price; after that every bid must top
// the current price by the minimum increment.
func MinimumBid(a *models.Auction) int64 {
	if a.BidCount == 0 {
		return a.StartingPrice
	}
	return a.CurrentPrice + a.MinIncrement
}

// ValidateBid checks a bid against the auction state at the given instant.
// It is pure so the bid rules can be tested without a database; the manager
// calls it while holding the auction row lock.
func ValidateBid(a *models.Auction, bidderID, amount int64, now time.Time) error {
	if !a.Status.Accepting() {
		return ErrNotOpen
	}
	if now.Before(a.StartTime) {
		return ErrNotStarted
	}
	if !now.Before(a.EndTime) {
		return ErrEnded
	}
	if a.SellerID == bidderID {
		return ErrSellerBid
	}
	if a.TopBidderID == bidderID {
		return ErrAlreadyTop
	}
	if !a.Invited(bidderID) {
		return ErrNotInvited
	}
	if amount < MinimumBid(a) {
		return ErrBidTooLow
	}
	return nil
}

// ShouldExtend reports whether a bid accepted at the given instant triggers
// an anti-sniping extension.
func ShouldExtend(a *models.Auction, now time.Time) bool {
	if a.Extensions >= MaxExtensions {
		return false
	}
	return a.EndTime.Sub(now) <= ExtensionWindow
}

// ExtendedEnd returns the pushed-out end time. Extensions stack from the
// current end, not from the bid instant, so the window stays predictable.
func ExtendedEnd(a *models.Auction) time.Time {
	return a.EndTime.Add(ExtensionStep)
}

// Outcome maps an expired auction to its terminal status.
func Outcome(a *models.Auction) models.AuctionStatus {
	if a.TopBidderID != 0 {
		return models.AuctionStatusSold
	}
	return models.AuctionStatusClosed
}

// Settlement is the resolution of an expired auction: the terminal
// status, the single winning bid when the auction sold, and the contract
// drawn up for the winner.
type Settlement struct {
	Status     models.AuctionStatus
	WinningBid *models.Bid
	Contract   *models.Contract
}

// Settle resolves an expired auction against its recorded bids. At most
// one bid wins: the highest amount, with the earlier bid taking a tie.
// Accepted bids strictly increase the price, so ties only appear if the
// increment rules were bypassed.
func Settle(a *models.Auction, bids []*models.Bid, now time.Time) Settlement {
	s := Settlement{Status: Outcome(a)}
	if s.Status != models.AuctionStatusSold {
		return s
	}

	for _, bid := range bids {
		if s.WinningBid == nil ||
			bid.Amount > s.WinningBid.Amount ||
			(bid.Amount == s.WinningBid.Amount && bid.PlacedAt.Before(s.WinningBid.PlacedAt)) {
			s.WinningBid = bid
		}
	}
	if s.WinningBid == nil {
		s.Status = models.AuctionStatusClosed
		return s
	}

	s.Contract = &models.Contract{
		AuctionID:  a.ID,
		PropertyID: a.PropertyID,
		SellerID:   a.SellerID,
		BuyerID:    s.WinningBid.BidderID,
		Price:      s.WinningBid.Amount,
		Status:     models.ContractStatusPendingPayment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s
}

// ValidateDuration bounds how long an auction may run.
func ValidateDuration(d time.Duration) error {
	if d < MinAuctionTime || d > MaxAuctionTime {
		return ErrBadDuration
	}
	return nil
}
