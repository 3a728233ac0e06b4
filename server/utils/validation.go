package utils

import (
	"regexp"
	"strings"

	"github.com/openlot/openlot/openlot/database/models"
	webmodels "github.com/openlot/openlot/server/models"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minPasswordLength = 8
	maxTitleLength    = 200
	maxUsernameLength = 32
)

// ValidateRegister checks a registration request and returns per-field
// problems. An empty map means the request is valid.
func ValidateRegister(req webmodels.RegisterRequest) map[string]string {
	details := make(map[string]string)

	if !emailPattern.MatchString(req.Email) {
		details["email"] = "must be a valid email address"
	}
	if username := strings.TrimSpace(req.Username); username == "" {
		details["username"] = "must not be empty"
	} else if len(username) > maxUsernameLength {
		details["username"] = "must be at most 32 characters"
	}
	if len(req.Password) < minPasswordLength {
		details["password"] = "must be at least 8 characters"
	}
	if req.Role != "" && !ValidRole(req.Role) {
		details["role"] = "must be buyer or seller"
	}

	return details
}

// ValidRole accepts the self-assignable roles. Admin accounts are only
// created out of band.
func ValidRole(role string) bool {
	return role == string(models.RoleBuyer) || role == string(models.RoleSeller)
}

// ValidateProperty checks a property create/update request.
func ValidateProperty(req webmodels.PropertyRequest) map[string]string {
	details := make(map[string]string)

	if title := strings.TrimSpace(req.Title); title == "" {
		details["title"] = "must not be empty"
	} else if len(title) > maxTitleLength {
		details["title"] = "must be at most 200 characters"
	}
	if !ValidPropertyKind(req.Kind) {
		details["kind"] = "must be apartment, house, commercial or land"
	}
	if strings.TrimSpace(req.Country) == "" {
		details["country"] = "must not be empty"
	}
	if strings.TrimSpace(req.City) == "" {
		details["city"] = "must not be empty"
	}
	if req.AreaSqm < 0 {
		details["area_sqm"] = "must not be negative"
	}
	if req.Rooms < 0 {
		details["rooms"] = "must not be negative"
	}

	return details
}

func ValidPropertyKind(kind string) bool {
	switch models.PropertyKind(kind) {
	case models.PropertyKindApartment, models.PropertyKindHouse,
		models.PropertyKindCommercial, models.PropertyKindLand:
		return true
	}
	return false
}

// ValidateAuctionCreate checks the numeric bounds of an auction request.
// Time parsing happens in the handler.
func ValidateAuctionCreate(req webmodels.AuctionCreateRequest) map[string]string {
	details := make(map[string]string)

	if req.PropertyID <= 0 {
		details["property_id"] = "must be a valid property id"
	}
	if req.StartingPrice <= 0 {
		details["starting_price"] = "must be positive"
	}
	if req.MinIncrement < 0 {
		details["min_increment"] = "must not be negative"
	}
	if req.DurationHours <= 0 {
		details["duration_hours"] = "must be positive"
	}

	return details
}
