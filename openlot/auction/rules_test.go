package auction

import (
	"errors"
	"testing"
	"time"

	"github.com/openlot/openlot/openlot/database/models"
)

func testAuction(mutate func(a *models.Auction)) *models.Auction {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &models.Auction{
		ID:            1,
		Code:          "K4YQ2A",
		PropertyID:    10,
		SellerID:      1,
		Status:        models.AuctionStatusActive,
		StartingPrice: 100000,
		CurrentPrice:  120000,
		MinIncrement:  5000,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		TopBidderID:   2,
		BidCount:      3,
	}
	if mutate != nil {
		mutate(a)
	}
	return a
}

func TestValidateBid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		mutate   func(a *models.Auction)
		bidderID int64
		amount   int64
		wantErr  error
	}{
		{
			name:     "valid bid over increment",
			bidderID: 3,
			amount:   125000,
			wantErr:  nil,
		},
		{
			name: "first bid only needs the starting price",
			mutate: func(a *models.Auction) {
				a.BidCount = 0
				a.TopBidderID = 0
				a.CurrentPrice = a.StartingPrice
			},
			bidderID: 3,
			amount:   100000,
			wantErr:  nil,
		},
		{
			name: "first bid below starting price",
			mutate: func(a *models.Auction) {
				a.BidCount = 0
				a.TopBidderID = 0
				a.CurrentPrice = a.StartingPrice
			},
			bidderID: 3,
			amount:   99999,
			wantErr:  ErrBidTooLow,
		},
		{
			name:     "draft auction",
			mutate:   func(a *models.Auction) { a.Status = models.AuctionStatusDraft },
			bidderID: 3,
			amount:   125000,
			wantErr:  ErrNotOpen,
		},
		{
			name:     "cancelled auction",
			mutate:   func(a *models.Auction) { a.Status = models.AuctionStatusCancelled },
			bidderID: 3,
			amount:   125000,
			wantErr:  ErrNotOpen,
		},
		{
			name:     "auction not started yet",
			mutate:   func(a *models.Auction) { a.StartTime = now.Add(time.Minute) },
			bidderID: 3,
			amount:   125000,
			wantErr:  ErrNotStarted,
		},
		{
			name:     "auction past its end",
			mutate:   func(a *models.Auction) { a.EndTime = now },
			bidderID: 3,
			amount:   125000,
			wantErr:  ErrEnded,
		},
		{
			name:     "seller bidding on own auction",
			bidderID: 1,
			amount:   125000,
			wantErr:  ErrSellerBid,
		},
		{
			name:     "top bidder raising themselves",
			bidderID: 2,
			amount:   125000,
			wantErr:  ErrAlreadyTop,
		},
		{
			name: "private auction without invite",
			mutate: func(a *models.Auction) {
				a.Private = true
				a.InvitedIDs = []int64{4, 5}
			},
			bidderID: 3,
			amount:   125000,
			wantErr:  ErrNotInvited,
		},
		{
			name: "private auction with invite",
			mutate: func(a *models.Auction) {
				a.Private = true
				a.InvitedIDs = []int64{3}
			},
			bidderID: 3,
			amount:   125000,
			wantErr:  nil,
		},
		{
			name:     "bid below current price plus increment",
			bidderID: 3,
			amount:   124999,
			wantErr:  ErrBidTooLow,
		},
		{
			name:     "bid exactly at current price plus increment",
			bidderID: 3,
			amount:   125000,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAuction(tt.mutate)
			err := ValidateBid(a, tt.bidderID, tt.amount, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBid() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMinimumBid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *models.Auction)
		want   int64
	}{
		{
			name: "no bids yet",
			mutate: func(a *models.Auction) {
				a.BidCount = 0
				a.CurrentPrice = a.StartingPrice
			},
			want: 100000,
		},
		{
			name: "with bids",
			want: 125000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinimumBid(testAuction(tt.mutate)); got != tt.want {
				t.Errorf("MinimumBid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldExtend(t *testing.T) {
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(a *models.Auction)
		now    time.Time
		want   bool
	}{
		{
			name: "bid well before the window",
			now:  end.Add(-ExtensionWindow - time.Second),
			want: false,
		},
		{
			name: "bid exactly at the window boundary",
			now:  end.Add(-ExtensionWindow),
			want: true,
		},
		{
			name: "bid inside the window",
			now:  end.Add(-time.Minute),
			want: true,
		},
		{
			name:   "extension cap reached",
			mutate: func(a *models.Auction) { a.Extensions = MaxExtensions },
			now:    end.Add(-time.Minute),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAuction(func(a *models.Auction) {
				a.EndTime = end
				if tt.mutate != nil {
					tt.mutate(a)
				}
			})
			if got := ShouldExtend(a, tt.now); got != tt.want {
				t.Errorf("ShouldExtend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtendedEnd(t *testing.T) {
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := testAuction(func(a *models.Auction) { a.EndTime = end })

	// Extensions stack from the current end, not from the bid instant.
	if got, want := ExtendedEnd(a), end.Add(ExtensionStep); !got.Equal(want) {
		t.Errorf("ExtendedEnd() = %v, want %v", got, want)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *models.Auction)
		want   models.AuctionStatus
	}{
		{
			name: "with a top bidder",
			want: models.AuctionStatusSold,
		},
		{
			name: "without bids",
			mutate: func(a *models.Auction) {
				a.TopBidderID = 0
				a.BidCount = 0
			},
			want: models.AuctionStatusClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(testAuction(tt.mutate)); got != tt.want {
				t.Errorf("Outcome() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettle(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	bid := func(id, bidderID, amount int64, placed time.Time) *models.Bid {
		return &models.Bid{ID: id, AuctionID: 1, BidderID: bidderID, Amount: amount, PlacedAt: placed}
	}

	tests := []struct {
		name       string
		mutate     func(a *models.Auction)
		bids       []*models.Bid
		wantStatus models.AuctionStatus
		wantBidID  int64
	}{
		{
			name: "no bids closes the auction",
			mutate: func(a *models.Auction) {
				a.TopBidderID = 0
				a.BidCount = 0
			},
			wantStatus: models.AuctionStatusClosed,
		},
		{
			name: "single bid wins",
			bids: []*models.Bid{
				bid(11, 2, 120000, now.Add(-time.Hour)),
			},
			wantStatus: models.AuctionStatusSold,
			wantBidID:  11,
		},
		{
			name: "highest of several bids wins",
			bids: []*models.Bid{
				bid(11, 3, 100000, now.Add(-3*time.Hour)),
				bid(12, 2, 120000, now.Add(-time.Hour)),
				bid(13, 4, 110000, now.Add(-2*time.Hour)),
			},
			wantStatus: models.AuctionStatusSold,
			wantBidID:  12,
		},
		{
			name: "earlier bid takes a tie",
			bids: []*models.Bid{
				bid(11, 3, 120000, now.Add(-time.Hour)),
				bid(12, 2, 120000, now.Add(-2*time.Hour)),
			},
			wantStatus: models.AuctionStatusSold,
			wantBidID:  12,
		},
		{
			name:       "top bidder without bid rows closes instead of selling",
			bids:       nil,
			wantStatus: models.AuctionStatusClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAuction(tt.mutate)
			got := Settle(a, tt.bids, now)

			if got.Status != tt.wantStatus {
				t.Errorf("Settle() status = %v, want %v", got.Status, tt.wantStatus)
			}
			if tt.wantBidID == 0 {
				if got.WinningBid != nil {
					t.Errorf("Settle() winning bid = %v, want none", got.WinningBid.ID)
				}
				if got.Contract != nil {
					t.Errorf("Settle() contract = %v, want none", got.Contract)
				}
				return
			}

			if got.WinningBid == nil || got.WinningBid.ID != tt.wantBidID {
				t.Fatalf("Settle() winning bid = %v, want %v", got.WinningBid, tt.wantBidID)
			}
			if got.Contract == nil {
				t.Fatal("Settle() contract = nil, want one for the winner")
			}
			if got.Contract.BuyerID != got.WinningBid.BidderID {
				t.Errorf("Settle() contract buyer = %v, want %v", got.Contract.BuyerID, got.WinningBid.BidderID)
			}
			if got.Contract.Price != got.WinningBid.Amount {
				t.Errorf("Settle() contract price = %v, want %v", got.Contract.Price, got.WinningBid.Amount)
			}
			if got.Contract.Status != models.ContractStatusPendingPayment {
				t.Errorf("Settle() contract status = %v, want %v", got.Contract.Status, models.ContractStatusPendingPayment)
			}
		})
	}
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		wantErr  error
	}{
		{name: "too short", duration: 30 * time.Minute, wantErr: ErrBadDuration},
		{name: "minimum", duration: MinAuctionTime, wantErr: nil},
		{name: "typical week", duration: 7 * 24 * time.Hour, wantErr: nil},
		{name: "maximum", duration: MaxAuctionTime, wantErr: nil},
		{name: "too long", duration: MaxAuctionTime + time.Hour, wantErr: ErrBadDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateDuration(tt.duration); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
