package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AuctionStatus string

const (
	AuctionStatusDraft     AuctionStatus = "draft"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusExtended  AuctionStatus = "extended"
	AuctionStatusClosed    AuctionStatus = "closed"
	AuctionStatusSold      AuctionStatus = "sold"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// Accepting returns true while the auction can take bids.
func (s AuctionStatus) Accepting() bool {
	return s == AuctionStatusActive || s == AuctionStatusExtended
}

// Terminal returns true once the status can no longer change.
func (s AuctionStatus) Terminal() bool {
	return s == AuctionStatusClosed || s == AuctionStatusSold || s == AuctionStatusCancelled
}

type Auction struct {
	bun.BaseModel `bun:"table:auctions,alias:a"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	Code       string `bun:"code,notnull,unique" json:"code"`
	PropertyID int64  `bun:"property_id,notnull" json:"property_id"`
	SellerID   int64  `bun:"seller_id,notnull" json:"seller_id"`

	Status        AuctionStatus `bun:"status,notnull,default:'draft'" json:"status"`
	StartingPrice int64         `bun:"starting_price,notnull" json:"starting_price"`
	CurrentPrice  int64         `bun:"current_price,notnull" json:"current_price"`
	MinIncrement  int64         `bun:"min_increment,notnull" json:"min_increment"`

	StartTime time.Time `bun:"start_time,notnull" json:"start_time"`
	EndTime   time.Time `bun:"end_time,notnull" json:"end_time"`

	// The invite list stays server side; invited bidders learn about a
	// private auction through their invitation, not the API payload.
	Private    bool    `bun:"private,notnull,default:false" json:"private"`
	InvitedIDs []int64 `bun:"invited_ids,array" json:"-"`

	TopBidderID  int64     `bun:"top_bidder_id" json:"top_bidder_id"`
	WinningBidID int64     `bun:"winning_bid_id" json:"winning_bid_id"`
	BidCount     int       `bun:"bid_count" json:"bid_count"`
	LastBidTime  time.Time `bun:"last_bid_time" json:"last_bid_time"`
	Extensions   int       `bun:"extensions" json:"extensions"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Invited reports whether a user may bid on a private auction. The seller
// is never counted as invited.
func (a *Auction) Invited(userID int64) bool {
	if !a.Private {
		return true
	}
	for _, id := range a.InvitedIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Bid struct {
	bun.BaseModel `bun:"table:bids,alias:b"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	AuctionID int64     `bun:"auction_id,notnull" json:"auction_id"`
	BidderID  int64     `bun:"bidder_id,notnull" json:"bidder_id"`
	Amount    int64     `bun:"amount,notnull" json:"amount"`
	Winning   bool      `bun:"winning,notnull,default:false" json:"winning"`
	PlacedAt  time.Time `bun:"placed_at,notnull" json:"placed_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
