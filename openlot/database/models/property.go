package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PropertyKind string

const (
	PropertyKindApartment  PropertyKind = "apartment"
	PropertyKindHouse      PropertyKind = "house"
	PropertyKindCommercial PropertyKind = "commercial"
	PropertyKindLand       PropertyKind = "land"
)

type PropertyStatus string

const (
	PropertyStatusDraft    PropertyStatus = "draft"
	PropertyStatusListed   PropertyStatus = "listed"
	PropertyStatusArchived PropertyStatus = "archived"
)

type Property struct {
	bun.BaseModel `bun:"table:properties,alias:p"`

	ID          int64          `bun:"id,pk,autoincrement" json:"id"`
	OwnerID     int64          `bun:"owner_id,notnull" json:"owner_id"`
	Title       string         `bun:"title,notnull" json:"title"`
	Description string         `bun:"description" json:"description"`
	Kind        PropertyKind   `bun:"kind,notnull" json:"kind"`
	Status      PropertyStatus `bun:"status,notnull,default:'draft'" json:"status"`

	Country string  `bun:"country,notnull" json:"country"`
	City    string  `bun:"city,notnull" json:"city"`
	Street  string  `bun:"street" json:"street"`
	Lat     float64 `bun:"lat" json:"lat"`
	Lon     float64 `bun:"lon" json:"lon"`

	AreaSqm   float64 `bun:"area_sqm" json:"area_sqm"`
	Rooms     int     `bun:"rooms" json:"rooms"`
	YearBuilt int     `bun:"year_built" json:"year_built"`

	// Object storage keys for uploaded photos.
	PhotoKeys []string `bun:"photo_keys,array" json:"photo_keys"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
