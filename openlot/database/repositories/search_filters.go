package repositories

import (
	"strings"

	"github.com/openlot/openlot/openlot/database/models"
	"github.com/uptrace/bun"
)

// PropertyFilters defines the available filters for property listing queries.
type PropertyFilters struct {
	Query   string
	Kind    models.PropertyKind
	Status  models.PropertyStatus
	City    string
	Country string
	OwnerID int64

	RoomsMin int
	RoomsMax int
	AreaMin  float64
	AreaMax  float64

	// Price band against the property's open auction.
	PriceMin int64
	PriceMax int64

	// Sorting
	SortBy   string // created_at | area_sqm | rooms | city
	SortDesc bool

	// Pagination
	Page    int
	PerPage int
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func (f *PropertyFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	switch f.SortBy {
	case "created_at", "area_sqm", "rooms", "city":
	default:
		f.SortBy = "created_at"
		f.SortDesc = true
	}
}

func (f *PropertyFilters) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// Apply adds the filter conditions to a property select query.
func (f *PropertyFilters) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	if f.Query != "" {
		pattern := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("(lower(title) LIKE ? OR lower(description) LIKE ?)", pattern, pattern)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.City != "" {
		q = q.Where("lower(city) = lower(?)", f.City)
	}
	if f.Country != "" {
		q = q.Where("lower(country) = lower(?)", f.Country)
	}
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.RoomsMin > 0 {
		q = q.Where("rooms >= ?", f.RoomsMin)
	}
	if f.RoomsMax > 0 {
		q = q.Where("rooms <= ?", f.RoomsMax)
	}
	if f.AreaMin > 0 {
		q = q.Where("area_sqm >= ?", f.AreaMin)
	}
	if f.AreaMax > 0 {
		q = q.Where("area_sqm <= ?", f.AreaMax)
	}
	if f.PriceMin > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM auctions a WHERE a.property_id = p.id AND a.status IN ('active', 'extended') AND a.current_price >= ?)", f.PriceMin)
	}
	if f.PriceMax > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM auctions a WHERE a.property_id = p.id AND a.status IN ('active', 'extended') AND a.current_price <= ?)", f.PriceMax)
	}

	order := f.SortBy
	if f.SortDesc {
		order += " DESC"
	}
	return q.Order(order)
}
