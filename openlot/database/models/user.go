package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64    `bun:"id,pk,autoincrement" json:"id"`
	Email        string   `bun:"email,notnull,unique" json:"email"`
	Username     string   `bun:"username,notnull,unique" json:"username"`
	PasswordHash string   `bun:"password_hash,notnull" json:"-"`
	Role         UserRole `bun:"role,notnull,default:'buyer'" json:"role"`
	Verified     bool     `bun:"verified,notnull,default:false" json:"verified"`
	Phone        string   `bun:"phone" json:"phone,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Session is an opaque bearer token handed out at login. Tokens are
// random UUIDs, never derived from user data.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	Token     string    `bun:"token,pk" json:"token"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`
	ExpiresAt time.Time `bun:"expires_at,notnull" json:"expires_at"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
