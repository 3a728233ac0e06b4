package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
)

// Manager owns the auction lifecycle. Every state change goes through a
// transaction that locks the auction row first, so concurrent bids and the
// expiry sweep can never disagree about the current price or status.
type Manager struct {
	repo     repositories.AuctionRepository
	notifier *Notifier
	codes    codeGenerator
}

func NewManager(repo repositories.AuctionRepository, notifier *Notifier) *Manager {
	if repo == nil {
		panic("auction repository cannot be nil")
	}
	if notifier == nil {
		panic("auction notifier cannot be nil")
	}

	return &Manager{
		repo:     repo,
		notifier: notifier,
	}
}

type CreateParams struct {
	PropertyID    int64
	SellerID      int64
	StartingPrice int64
	MinIncrement  int64
	StartTime     time.Time
	Duration      time.Duration
	Private       bool
}

// CreateAuction creates a draft auction for a listed property. The
// property row is locked for the duration of the transaction so two
// concurrent creates cannot both pass the open-auction check.
func (m *Manager) CreateAuction(ctx context.Context, params CreateParams) (*models.Auction, error) {
	if params.StartingPrice <= 0 {
		return nil, fmt.Errorf("starting price must be positive")
	}
	if err := ValidateDuration(params.Duration); err != nil {
		return nil, err
	}
	if params.MinIncrement <= 0 {
		params.MinIncrement = DefaultMinIncrement
	}
	if params.StartTime.IsZero() {
		params.StartTime = time.Now()
	}

	code, err := m.codes.next()
	if err != nil {
		return nil, fmt.Errorf("failed to generate auction code: %w", err)
	}

	tx, err := m.repo.DB().BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		m.codes.release(code)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var property models.Property
	err = tx.NewSelect().
		Model(&property).
		Where("id = ?", params.PropertyID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		m.codes.release(code)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if property.OwnerID != params.SellerID {
		m.codes.release(code)
		return nil, ErrNotSeller
	}
	if property.Status != models.PropertyStatusListed {
		m.codes.release(code)
		return nil, fmt.Errorf("property %d is not listed", property.ID)
	}

	open, err := tx.NewSelect().
		Model((*models.Auction)(nil)).
		Where("property_id = ?", params.PropertyID).
		Where("status IN (?, ?, ?)",
			models.AuctionStatusDraft, models.AuctionStatusActive, models.AuctionStatusExtended).
		Exists(ctx)
	if err != nil {
		m.codes.release(code)
		return nil, fmt.Errorf("failed to check open auctions: %w", err)
	}
	if open {
		m.codes.release(code)
		return nil, ErrPropertyBusy
	}

	now := time.Now()
	auction := &models.Auction{
		Code:          code,
		PropertyID:    params.PropertyID,
		SellerID:      params.SellerID,
		Status:        models.AuctionStatusDraft,
		StartingPrice: params.StartingPrice,
		CurrentPrice:  params.StartingPrice,
		MinIncrement:  params.MinIncrement,
		StartTime:     params.StartTime,
		EndTime:       params.StartTime.Add(params.Duration),
		Private:       params.Private,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := tx.NewInsert().Model(auction).Exec(ctx); err != nil {
		m.codes.release(code)
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		m.codes.release(code)
		return nil, fmt.Errorf("failed to commit auction creation: %w", err)
	}

	slog.Info("Auction created",
		slog.String("code", auction.Code),
		slog.Int64("property_id", auction.PropertyID),
		slog.Int64("seller_id", auction.SellerID),
		slog.Int64("starting_price", auction.StartingPrice))

	return auction, nil
}

// Activate moves a draft auction to active so it starts taking bids.
func (m *Manager) Activate(ctx context.Context, auctionID, requesterID int64) error {
	auction, err := m.repo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.SellerID != requesterID {
		return ErrNotSeller
	}
	return m.repo.Activate(ctx, auctionID)
}

// Cancel stops an auction before it finalizes. Admins pass force to cancel
// on behalf of the seller.
func (m *Manager) Cancel(ctx context.Context, auctionID, requesterID int64, force bool) error {
	auction, err := m.repo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.SellerID != requesterID && !force {
		return ErrNotSeller
	}
	return m.repo.Cancel(ctx, auctionID)
}

// Invite adds a bidder to a private auction's invite list.
func (m *Manager) Invite(ctx context.Context, auctionID, requesterID, userID int64) error {
	auction, err := m.repo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.SellerID != requesterID {
		return ErrNotSeller
	}
	if !auction.Private {
		return fmt.Errorf("auction %d is not private", auctionID)
	}
	if userID == auction.SellerID {
		return fmt.Errorf("seller cannot be invited to bid")
	}
	return m.repo.InviteBidder(ctx, auctionID, userID)
}

// PlaceBid records a bid inside a serializable transaction. The auction
// row lock serializes competing bidders; the bid rules run against the
// locked snapshot. A bid near the end pushes the end time out.
func (m *Manager) PlaceBid(ctx context.Context, auctionID, bidderID, amount int64) (*models.Bid, error) {
	tx, err := m.repo.DB().BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	auction := new(models.Auction)
	err = tx.NewSelect().
		Model(auction).
		Where("id = ?", auctionID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}

	now := time.Now()
	if err := ValidateBid(auction, bidderID, amount, now); err != nil {
		return nil, err
	}

	previousBidder := auction.TopBidderID

	bid := &models.Bid{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		PlacedAt:  now,
		CreatedAt: now,
	}
	if _, err := tx.NewInsert().Model(bid).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record bid: %w", err)
	}

	update := tx.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("top_bidder_id = ?", bidderID).
		Set("current_price = ?", amount).
		Set("last_bid_time = ?", now).
		Set("bid_count = bid_count + 1").
		Set("updated_at = ?", now).
		Where("id = ?", auctionID)

	extended := ShouldExtend(auction, now)
	if extended {
		auction.EndTime = ExtendedEnd(auction)
		auction.Extensions++
		update = update.
			Set("end_time = ?", auction.EndTime).
			Set("extensions = ?", auction.Extensions).
			Set("status = ?", models.AuctionStatusExtended)
		auction.Status = models.AuctionStatusExtended
	}

	if _, err := update.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to update auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bid transaction: %w", err)
	}

	auction.TopBidderID = bidderID
	auction.CurrentPrice = amount
	auction.BidCount++

	slog.Info("Bid placed",
		slog.String("code", auction.Code),
		slog.Int64("bidder_id", bidderID),
		slog.Int64("amount", amount),
		slog.Bool("extended", extended))

	// Notifications go out after the commit so a broker hiccup cannot
	// roll back an accepted bid.
	m.notifier.NotifyOutbid(ctx, auction, previousBidder, amount)
	if extended {
		m.notifier.NotifyExtended(ctx, auction)
	}

	return bid, nil
}

// FinalizeExpired sweeps auctions whose end time has passed and settles
// each one. Called by the scheduler; safe to run from several processes
// because finalization locks with SKIP LOCKED.
func (m *Manager) FinalizeExpired(ctx context.Context) error {
	expired, err := m.repo.GetExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to get expired auctions: %w", err)
	}

	for _, auction := range expired {
		auctionCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := m.finalize(auctionCtx, auction.ID); err != nil {
			slog.Error("Failed to finalize expired auction",
				slog.Int64("auction_id", auction.ID),
				slog.String("code", auction.Code),
				slog.Any("error", err))
		}
		cancel()
	}

	return nil
}

// finalize settles one expired auction: marks the winning bid, flips the
// status to sold or closed, and draws up the contract for the winner. The
// SKIP LOCKED lock lets concurrent sweeps pass over auctions another
// worker is already settling.
func (m *Manager) finalize(ctx context.Context, auctionID int64) error {
	tx, err := m.repo.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	auction := new(models.Auction)
	err = tx.NewSelect().
		Model(auction).
		Where("id = ?", auctionID).
		For("UPDATE SKIP LOCKED").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to lock auction: %w", err)
	}

	// Re-check under the lock: a late bid may have extended the auction,
	// or another sweep may have settled it already.
	if !auction.Status.Accepting() || time.Now().Before(auction.EndTime) {
		return nil
	}

	now := time.Now()

	var bids []*models.Bid
	if auction.TopBidderID != 0 {
		err = tx.NewSelect().
			Model(&bids).
			Where("auction_id = ?", auctionID).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to load bids: %w", err)
		}
	}

	settlement := Settle(auction, bids, now)
	auction.Status = settlement.Status

	if settlement.WinningBid != nil {
		_, err = tx.NewUpdate().
			Model((*models.Bid)(nil)).
			Set("winning = true").
			Where("id = ?", settlement.WinningBid.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark winning bid: %w", err)
		}
		auction.WinningBidID = settlement.WinningBid.ID

		if _, err := tx.NewInsert().Model(settlement.Contract).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}
	}

	result, err := tx.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("status = ?", auction.Status).
		Set("winning_bid_id = ?", auction.WinningBidID).
		Set("updated_at = ?", now).
		Where("id = ?", auctionID).
		Where("status IN (?, ?)", models.AuctionStatusActive, models.AuctionStatusExtended).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update auction status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("auction %d changed state during finalization", auctionID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit auction finalization: %w", err)
	}

	m.codes.release(auction.Code)

	slog.Info("Auction finalized",
		slog.String("code", auction.Code),
		slog.String("status", string(auction.Status)),
		slog.Int64("final_price", auction.CurrentPrice),
		slog.Int64("winner_id", auction.TopBidderID))

	m.notifier.NotifyOutcome(ctx, auction)

	if auction.Status == models.AuctionStatusSold {
		bids, err := m.repo.GetAuctionBids(ctx, auctionID)
		if err != nil {
			slog.Error("Failed to load bids for loser notifications",
				slog.Int64("auction_id", auctionID),
				slog.Any("error", err))
			return nil
		}

		seen := make(map[int64]bool, len(bids))
		var losers []int64
		for _, bid := range bids {
			if !seen[bid.BidderID] {
				seen[bid.BidderID] = true
				losers = append(losers, bid.BidderID)
			}
		}
		m.notifier.NotifyLost(ctx, auction, losers)
	}

	return nil
}
