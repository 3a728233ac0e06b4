package services

import (
	"context"
	"errors"
	"testing"

	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories/mock"
	"go.uber.org/mock/gomock"
)

func listedProperties() []*models.Property {
	return []*models.Property{
		{ID: 1, Title: "Lakeside villa", City: "Annecy"},
		{ID: 2, Title: "Downtown loft", City: "Berlin"},
		{ID: 3, Title: "Country house near the lake", City: "Annecy"},
	}
}

func TestPropertySearchServiceSuggest(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantIDs   map[int64]bool
		wantEmpty bool
	}{
		{
			name:    "matches title words",
			query:   "lake",
			wantIDs: map[int64]bool{1: true, 3: true},
		},
		{
			name:    "matches city",
			query:   "berlin",
			wantIDs: map[int64]bool{2: true},
		},
		{
			name:      "no match",
			query:     "zzzz",
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mock.NewMockPropertyRepository(gomock.NewController(t))
			repo.EXPECT().SearchIndex(gomock.Any()).Return(listedProperties(), nil)

			service := NewPropertySearchService(repo)
			suggestions, err := service.Suggest(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Suggest() error = %v", err)
			}

			if tt.wantEmpty {
				if len(suggestions) != 0 {
					t.Errorf("Suggest() = %v, want no suggestions", suggestions)
				}
				return
			}

			if len(suggestions) == 0 {
				t.Fatal("Suggest() returned no suggestions")
			}
			for _, s := range suggestions {
				if !tt.wantIDs[s.PropertyID] {
					t.Errorf("Suggest() returned unexpected property %d (%q)", s.PropertyID, s.Title)
				}
			}
		})
	}
}

func TestPropertySearchServiceSuggestShortQuery(t *testing.T) {
	// A one-rune query never touches the repository.
	repo := mock.NewMockPropertyRepository(gomock.NewController(t))

	service := NewPropertySearchService(repo)
	suggestions, err := service.Suggest(context.Background(), "a")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if suggestions != nil {
		t.Errorf("Suggest() = %v, want nil", suggestions)
	}
}

func TestPropertySearchServiceIndexReuse(t *testing.T) {
	repo := mock.NewMockPropertyRepository(gomock.NewController(t))
	repo.EXPECT().SearchIndex(gomock.Any()).Return(listedProperties(), nil).Times(1)

	service := NewPropertySearchService(repo)
	for i := 0; i < 3; i++ {
		if _, err := service.Suggest(context.Background(), "lake"); err != nil {
			t.Fatalf("Suggest() error = %v", err)
		}
	}
}

func TestPropertySearchServiceInvalidate(t *testing.T) {
	repo := mock.NewMockPropertyRepository(gomock.NewController(t))
	repo.EXPECT().SearchIndex(gomock.Any()).Return(listedProperties(), nil).Times(2)

	service := NewPropertySearchService(repo)
	if _, err := service.Suggest(context.Background(), "lake"); err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	service.Invalidate()

	if _, err := service.Suggest(context.Background(), "lake"); err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
}

func TestPropertySearchServiceIndexError(t *testing.T) {
	repo := mock.NewMockPropertyRepository(gomock.NewController(t))
	repo.EXPECT().SearchIndex(gomock.Any()).Return(nil, errors.New("connection refused"))

	service := NewPropertySearchService(repo)
	if _, err := service.Suggest(context.Background(), "lake"); err == nil {
		t.Fatal("Suggest() error = nil, want error")
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "lowercases", query: "Lakeside VILLA", want: "lakeside villa"},
		{name: "collapses whitespace", query: "  lakeside \t villa  ", want: "lakeside villa"},
		{name: "empty", query: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeQuery(tt.query); got != tt.want {
				t.Errorf("normalizeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}
