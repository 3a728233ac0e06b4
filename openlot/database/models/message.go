package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MessageThread struct {
	bun.BaseModel `bun:"table:message_threads,alias:mt"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Subject string `bun:"subject,notnull" json:"subject"`

	// Optional property the conversation is about.
	PropertyID int64 `bun:"property_id" json:"property_id,omitempty"`

	CreatedBy     int64     `bun:"created_by,notnull" json:"created_by"`
	LastMessageAt time.Time `bun:"last_message_at" json:"last_message_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type ThreadParticipant struct {
	bun.BaseModel `bun:"table:thread_participants,alias:tp"`

	ID       int64     `bun:"id,pk,autoincrement" json:"id"`
	ThreadID int64     `bun:"thread_id,notnull" json:"thread_id"`
	UserID   int64     `bun:"user_id,notnull" json:"user_id"`
	JoinedAt time.Time `bun:"joined_at,notnull" json:"joined_at"`
	ReadAt   time.Time `bun:"read_at" json:"read_at"`
}

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	ThreadID int64  `bun:"thread_id,notnull" json:"thread_id"`
	SenderID int64  `bun:"sender_id,notnull" json:"sender_id"`
	Body     string `bun:"body,notnull" json:"body"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
