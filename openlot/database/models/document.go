package models

import (
	"time"

	"github.com/uptrace/bun"
)

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	OwnerID int64  `bun:"owner_id,notnull" json:"owner_id"`
	Kind    string `bun:"kind,notnull" json:"kind"`

	// Optional links to the entity the document verifies.
	PropertyID int64 `bun:"property_id" json:"property_id,omitempty"`
	ContractID int64 `bun:"contract_id" json:"contract_id,omitempty"`

	// Downloads go through presigned URLs, the raw key stays internal.
	ObjectKey   string `bun:"object_key,notnull,unique" json:"-"`
	FileName    string `bun:"file_name,notnull" json:"file_name"`
	ContentType string `bun:"content_type,notnull" json:"content_type"`
	SizeBytes   int64  `bun:"size_bytes,notnull" json:"size_bytes"`

	Status       DocumentStatus `bun:"status,notnull,default:'pending'" json:"status"`
	ReviewerID   int64          `bun:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewerNote string         `bun:"reviewer_note" json:"reviewer_note,omitempty"`
	ReviewedAt   time.Time      `bun:"reviewed_at" json:"reviewed_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
