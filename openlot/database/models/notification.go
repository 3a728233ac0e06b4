package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NotificationKind string

const (
	NotificationOutbid           NotificationKind = "outbid"
	NotificationAuctionExtended  NotificationKind = "auction_extended"
	NotificationAuctionWon       NotificationKind = "auction_won"
	NotificationAuctionLost      NotificationKind = "auction_lost"
	NotificationAuctionSold      NotificationKind = "auction_sold"
	NotificationAuctionClosed    NotificationKind = "auction_closed"
	NotificationDocumentReviewed NotificationKind = "document_reviewed"
	NotificationNewMessage       NotificationKind = "new_message"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID     int64            `bun:"id,pk,autoincrement" json:"id"`
	UserID int64            `bun:"user_id,notnull" json:"user_id"`
	Kind   NotificationKind `bun:"kind,notnull" json:"kind"`
	Title  string           `bun:"title,notnull" json:"title"`
	Body   string           `bun:"body" json:"body"`

	// Payload carries kind-specific fields for the client, stored as JSONB.
	Payload map[string]any `bun:"payload,type:jsonb" json:"payload,omitempty"`

	Read   bool      `bun:"read,notnull,default:false" json:"read"`
	ReadAt time.Time `bun:"read_at" json:"read_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
