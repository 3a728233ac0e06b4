package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ContractStatus string

const (
	ContractStatusPendingPayment ContractStatus = "pending_payment"
	ContractStatusPaid           ContractStatus = "paid"
	ContractStatusCompleted      ContractStatus = "completed"
	ContractStatusDefaulted      ContractStatus = "defaulted"
)

// Contract is created when an auction closes with a winning bid and tracks
// the settlement between buyer and seller.
type Contract struct {
	bun.BaseModel `bun:"table:contracts,alias:c"`

	ID         int64 `bun:"id,pk,autoincrement" json:"id"`
	AuctionID  int64 `bun:"auction_id,notnull,unique" json:"auction_id"`
	PropertyID int64 `bun:"property_id,notnull" json:"property_id"`
	SellerID   int64 `bun:"seller_id,notnull" json:"seller_id"`
	BuyerID    int64 `bun:"buyer_id,notnull" json:"buyer_id"`

	Price  int64          `bun:"price,notnull" json:"price"`
	Status ContractStatus `bun:"status,notnull,default:'pending_payment'" json:"status"`

	SignedAt    time.Time `bun:"signed_at" json:"signed_at"`
	CompletedAt time.Time `bun:"completed_at" json:"completed_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:pm"`

	ID         int64         `bun:"id,pk,autoincrement" json:"id"`
	Reference  string        `bun:"reference,notnull,unique" json:"reference"`
	ContractID int64         `bun:"contract_id,notnull" json:"contract_id"`
	PayerID    int64         `bun:"payer_id,notnull" json:"payer_id"`
	Amount     int64         `bun:"amount,notnull" json:"amount"`
	Method     string        `bun:"method,notnull" json:"method"`
	Status     PaymentStatus `bun:"status,notnull,default:'pending'" json:"status"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Transaction is the append-only ledger row written when a payment is
// confirmed. Rows are never updated.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:tx"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Reference  string    `bun:"reference,notnull,unique" json:"reference"`
	ContractID int64     `bun:"contract_id,notnull" json:"contract_id"`
	PaymentID  int64     `bun:"payment_id,notnull" json:"payment_id"`
	FromUserID int64     `bun:"from_user_id,notnull" json:"from_user_id"`
	ToUserID   int64     `bun:"to_user_id,notnull" json:"to_user_id"`
	Amount     int64     `bun:"amount,notnull" json:"amount"`
	RecordedAt time.Time `bun:"recorded_at,notnull" json:"recorded_at"`
}
