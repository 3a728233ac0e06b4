package services

import (
	"context"
	"errors"
	"testing"

	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories/mock"
	"go.uber.org/mock/gomock"
)

func soldAuctions(prices ...int64) []*models.Auction {
	auctions := make([]*models.Auction, len(prices))
	for i, price := range prices {
		auctions[i] = &models.Auction{
			ID:           int64(i + 1),
			Status:       models.AuctionStatusSold,
			CurrentPrice: price,
		}
	}
	return auctions
}

func TestValuationServiceEstimate(t *testing.T) {
	property := &models.Property{
		ID:   42,
		Kind: models.PropertyKindApartment,
		City: "Lisbon",
	}

	tests := []struct {
		name         string
		comparables  []*models.Auction
		repoErr      error
		wantEstimate int64
		wantLow      int64
		wantHigh     int64
		wantSample   int
		wantErr      error
	}{
		{
			name:         "odd sample takes the middle price",
			comparables:  soldAuctions(300000, 100000, 200000),
			wantEstimate: 200000,
			wantLow:      100000,
			wantHigh:     300000,
			wantSample:   3,
		},
		{
			name:         "even sample averages the middle prices",
			comparables:  soldAuctions(100000, 200000, 300000, 400000),
			wantEstimate: 250000,
			wantLow:      100000,
			wantHigh:     400000,
			wantSample:   4,
		},
		{
			name:        "too few comparables",
			comparables: soldAuctions(100000, 200000),
			wantErr:     ErrNotEnoughComparables,
		},
		{
			name:    "repository failure",
			repoErr: errors.New("connection refused"),
			wantErr: errors.New("failed to load comparables"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mock.NewMockAuctionRepository(gomock.NewController(t))
			repo.EXPECT().
				GetSoldComparables(gomock.Any(), property.Kind, property.City, gomock.Any()).
				Return(tt.comparables, tt.repoErr)

			service := NewValuationService(repo)
			valuation, err := service.Estimate(context.Background(), property)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("Estimate() error = nil, wantErr %v", tt.wantErr)
				}
				if errors.Is(tt.wantErr, ErrNotEnoughComparables) && !errors.Is(err, ErrNotEnoughComparables) {
					t.Errorf("Estimate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}

			if valuation.PropertyID != property.ID {
				t.Errorf("Estimate() PropertyID = %d, want %d", valuation.PropertyID, property.ID)
			}
			if valuation.Estimate != tt.wantEstimate {
				t.Errorf("Estimate() Estimate = %d, want %d", valuation.Estimate, tt.wantEstimate)
			}
			if valuation.Low != tt.wantLow || valuation.High != tt.wantHigh {
				t.Errorf("Estimate() range = [%d, %d], want [%d, %d]",
					valuation.Low, valuation.High, tt.wantLow, tt.wantHigh)
			}
			if valuation.SampleSize != tt.wantSample {
				t.Errorf("Estimate() SampleSize = %d, want %d", valuation.SampleSize, tt.wantSample)
			}
		})
	}
}

func TestValuationServiceEstimateCaches(t *testing.T) {
	repo := mock.NewMockAuctionRepository(gomock.NewController(t))
	repo.EXPECT().
		GetSoldComparables(gomock.Any(), models.PropertyKindHouse, "Porto", gomock.Any()).
		Return(soldAuctions(100000, 200000, 300000), nil).
		Times(1)

	service := NewValuationService(repo)

	first := &models.Property{ID: 1, Kind: models.PropertyKindHouse, City: "Porto"}
	second := &models.Property{ID: 2, Kind: models.PropertyKindHouse, City: "Porto"}

	if _, err := service.Estimate(context.Background(), first); err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	// Same kind and city hits the cache; the id is rewritten per request.
	valuation, err := service.Estimate(context.Background(), second)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if valuation.PropertyID != second.ID {
		t.Errorf("Estimate() PropertyID = %d, want %d", valuation.PropertyID, second.ID)
	}
	if valuation.Estimate != 200000 {
		t.Errorf("Estimate() Estimate = %d, want 200000", valuation.Estimate)
	}
}

func TestValuationServiceEstimateMany(t *testing.T) {
	repo := mock.NewMockAuctionRepository(gomock.NewController(t))
	repo.EXPECT().
		GetSoldComparables(gomock.Any(), models.PropertyKindHouse, "Porto", gomock.Any()).
		Return(soldAuctions(100000, 200000, 300000), nil)
	repo.EXPECT().
		GetSoldComparables(gomock.Any(), models.PropertyKindLand, "Faro", gomock.Any()).
		Return(soldAuctions(50000), nil)

	service := NewValuationService(repo)

	properties := []*models.Property{
		{ID: 1, Kind: models.PropertyKindHouse, City: "Porto"},
		{ID: 2, Kind: models.PropertyKindLand, City: "Faro"},
	}

	valuations, err := service.EstimateMany(context.Background(), properties)
	if err != nil {
		t.Fatalf("EstimateMany() error = %v", err)
	}

	// The land parcel has too few comparables and is skipped, not failed.
	if len(valuations) != 1 {
		t.Fatalf("EstimateMany() returned %d valuations, want 1", len(valuations))
	}
	if valuations[0].PropertyID != 1 {
		t.Errorf("EstimateMany() PropertyID = %d, want 1", valuations[0].PropertyID)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		sorted []int64
		want   int64
	}{
		{name: "single value", sorted: []int64{5}, want: 5},
		{name: "odd count", sorted: []int64{1, 2, 9}, want: 2},
		{name: "even count", sorted: []int64{1, 2, 4, 9}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.sorted); got != tt.want {
				t.Errorf("median() = %v, want %v", got, tt.want)
			}
		})
	}
}
