package utils

import (
	"strings"
	"testing"

	webmodels "github.com/openlot/openlot/server/models"
)

func TestValidateRegister(t *testing.T) {
	valid := webmodels.RegisterRequest{
		Email:    "ana@example.com",
		Username: "ana",
		Password: "correct horse",
		Role:     "seller",
	}

	tests := []struct {
		name       string
		mutate     func(r *webmodels.RegisterRequest)
		wantFields []string
	}{
		{
			name: "valid request",
		},
		{
			name:   "empty role defaults later",
			mutate: func(r *webmodels.RegisterRequest) { r.Role = "" },
		},
		{
			name:       "bad email",
			mutate:     func(r *webmodels.RegisterRequest) { r.Email = "not-an-email" },
			wantFields: []string{"email"},
		},
		{
			name:       "blank username",
			mutate:     func(r *webmodels.RegisterRequest) { r.Username = "   " },
			wantFields: []string{"username"},
		},
		{
			name:       "username too long",
			mutate:     func(r *webmodels.RegisterRequest) { r.Username = strings.Repeat("a", 33) },
			wantFields: []string{"username"},
		},
		{
			name:       "short password",
			mutate:     func(r *webmodels.RegisterRequest) { r.Password = "short" },
			wantFields: []string{"password"},
		},
		{
			name:       "admin role rejected",
			mutate:     func(r *webmodels.RegisterRequest) { r.Role = "admin" },
			wantFields: []string{"role"},
		},
		{
			name: "multiple problems",
			mutate: func(r *webmodels.RegisterRequest) {
				r.Email = "nope"
				r.Password = ""
			},
			wantFields: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			details := ValidateRegister(req)
			if len(details) != len(tt.wantFields) {
				t.Fatalf("ValidateRegister() = %v, want %d problems", details, len(tt.wantFields))
			}
			for _, field := range tt.wantFields {
				if _, ok := details[field]; !ok {
					t.Errorf("ValidateRegister() missing problem for %q: %v", field, details)
				}
			}
		})
	}
}

func TestValidateProperty(t *testing.T) {
	valid := webmodels.PropertyRequest{
		Title:   "Sunny two-bedroom",
		Kind:    "apartment",
		Country: "PT",
		City:    "Lisbon",
		AreaSqm: 64,
		Rooms:   2,
	}

	tests := []struct {
		name       string
		mutate     func(r *webmodels.PropertyRequest)
		wantFields []string
	}{
		{
			name: "valid request",
		},
		{
			name:       "blank title",
			mutate:     func(r *webmodels.PropertyRequest) { r.Title = " " },
			wantFields: []string{"title"},
		},
		{
			name:       "title too long",
			mutate:     func(r *webmodels.PropertyRequest) { r.Title = strings.Repeat("x", 201) },
			wantFields: []string{"title"},
		},
		{
			name:       "unknown kind",
			mutate:     func(r *webmodels.PropertyRequest) { r.Kind = "castle" },
			wantFields: []string{"kind"},
		},
		{
			name:       "missing location",
			mutate:     func(r *webmodels.PropertyRequest) { r.Country = ""; r.City = "" },
			wantFields: []string{"country", "city"},
		},
		{
			name:       "negative area",
			mutate:     func(r *webmodels.PropertyRequest) { r.AreaSqm = -1 },
			wantFields: []string{"area_sqm"},
		},
		{
			name:       "negative rooms",
			mutate:     func(r *webmodels.PropertyRequest) { r.Rooms = -1 },
			wantFields: []string{"rooms"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			details := ValidateProperty(req)
			if len(details) != len(tt.wantFields) {
				t.Fatalf("ValidateProperty() = %v, want %d problems", details, len(tt.wantFields))
			}
			for _, field := range tt.wantFields {
				if _, ok := details[field]; !ok {
					t.Errorf("ValidateProperty() missing problem for %q: %v", field, details)
				}
			}
		})
	}
}

func TestValidateAuctionCreate(t *testing.T) {
	valid := webmodels.AuctionCreateRequest{
		PropertyID:    1,
		StartingPrice: 100000,
		MinIncrement:  1000,
		DurationHours: 72,
	}

	tests := []struct {
		name       string
		mutate     func(r *webmodels.AuctionCreateRequest)
		wantFields []string
	}{
		{
			name: "valid request",
		},
		{
			name:   "zero increment falls back to the default",
			mutate: func(r *webmodels.AuctionCreateRequest) { r.MinIncrement = 0 },
		},
		{
			name:       "missing property",
			mutate:     func(r *webmodels.AuctionCreateRequest) { r.PropertyID = 0 },
			wantFields: []string{"property_id"},
		},
		{
			name:       "non-positive starting price",
			mutate:     func(r *webmodels.AuctionCreateRequest) { r.StartingPrice = 0 },
			wantFields: []string{"starting_price"},
		},
		{
			name:       "negative increment",
			mutate:     func(r *webmodels.AuctionCreateRequest) { r.MinIncrement = -1 },
			wantFields: []string{"min_increment"},
		},
		{
			name:       "non-positive duration",
			mutate:     func(r *webmodels.AuctionCreateRequest) { r.DurationHours = 0 },
			wantFields: []string{"duration_hours"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			details := ValidateAuctionCreate(req)
			if len(details) != len(tt.wantFields) {
				t.Fatalf("ValidateAuctionCreate() = %v, want %d problems", details, len(tt.wantFields))
			}
			for _, field := range tt.wantFields {
				if _, ok := details[field]; !ok {
					t.Errorf("ValidateAuctionCreate() missing problem for %q: %v", field, details)
				}
			}
		})
	}
}

func TestValidPropertyKind(t *testing.T) {
	for _, kind := range []string{"apartment", "house", "commercial", "land"} {
		if !ValidPropertyKind(kind) {
			t.Errorf("ValidPropertyKind(%q) = false, want true", kind)
		}
	}
	for _, kind := range []string{"", "castle", "Apartment"} {
		if ValidPropertyKind(kind) {
			t.Errorf("ValidPropertyKind(%q) = true, want false", kind)
		}
	}
}
