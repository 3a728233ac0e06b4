package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openlot/openlot/openlot/database/models"
	"github.com/uptrace/bun"
)

type AuctionRepository interface {
	DB() *bun.DB
	Create(ctx context.Context, auction *models.Auction) error
	GetByID(ctx context.Context, id int64) (*models.Auction, error)
	GetByCode(ctx context.Context, code string) (*models.Auction, error)
	GetLive(ctx context.Context, limit, offset int) ([]*models.Auction, int, error)
	GetLiveByProperty(ctx context.Context, propertyID int64) (*models.Auction, error)
	GetExpired(ctx context.Context) ([]*models.Auction, error)
	Activate(ctx context.Context, auctionID int64) error
	Cancel(ctx context.Context, auctionID int64) error
	InviteBidder(ctx context.Context, auctionID, userID int64) error
	GetAuctionBids(ctx context.Context, auctionID int64) ([]*models.Bid, error)
	GetUserBids(ctx context.Context, userID int64) ([]*models.Bid, error)
	GetSoldComparables(ctx context.Context, kind models.PropertyKind, city string, since time.Time) ([]*models.Auction, error)
}

type auctionRepository struct {
	db *bun.DB
}

func NewAuctionRepository(db *bun.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) DB() *bun.DB {
	return r.db
}

func (r *auctionRepository) Create(ctx context.Context, auction *models.Auction) error {
	auction.CreatedAt = time.Now()
	auction.UpdatedAt = time.Now()
	auction.CurrentPrice = auction.StartingPrice
	auction.BidCount = 0

	_, err := r.db.NewInsert().Model(auction).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

func (r *auctionRepository) GetByID(ctx context.Context, id int64) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

func (r *auctionRepository) GetByCode(ctx context.Context, code string) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Where("code = ?", code).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auction by code: %w", err)
	}
	return auction, nil
}

// GetLive returns auctions currently accepting bids, soonest-ending first.
// Private auctions never show up here; invited bidders reach them by id
// or code.
func (r *auctionRepository) GetLive(ctx context.Context, limit, offset int) ([]*models.Auction, int, error) {
	if limit <= 0 {
		limit = defaultPerPage
	}

	var auctions []*models.Auction
	total, err := r.liveQuery(&auctions, time.Now()).
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get live auctions: %w", err)
	}

	return auctions, total, nil
}

func (r *auctionRepository) liveQuery(auctions *[]*models.Auction, now time.Time) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(auctions).
		Where("status IN (?)", bun.In([]models.AuctionStatus{models.AuctionStatusActive, models.AuctionStatusExtended})).
		Where("private = false").
		Where("end_time > ?", now).
		Order("end_time ASC")
}

func (r *auctionRepository) GetLiveByProperty(ctx context.Context, propertyID int64) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Where("property_id = ?", propertyID).
		Where("status IN (?)", bun.In([]models.AuctionStatus{
			models.AuctionStatusDraft, models.AuctionStatusActive, models.AuctionStatusExtended,
		})).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get live auction for property: %w", err)
	}
	return auction, nil
}

// GetExpired returns auctions past their end time that still need
// finalizing. The rows are not locked here; finalization re-checks state
// under FOR UPDATE.
func (r *auctionRepository) GetExpired(ctx context.Context) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.NewSelect().
		Model(&auctions).
		Where("status IN (?)", bun.In([]models.AuctionStatus{models.AuctionStatusActive, models.AuctionStatusExtended})).
		Where("end_time <= ?", time.Now()).
		Order("end_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired auctions: %w", err)
	}
	return auctions, nil
}

func (r *auctionRepository) Activate(ctx context.Context, auctionID int64) error {
	result, err := r.db.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("status = ?", models.AuctionStatusActive).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", auctionID).
		Where("status = ?", models.AuctionStatusDraft).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to activate auction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("auction %d is not in draft", auctionID)
	}
	return nil
}

func (r *auctionRepository) Cancel(ctx context.Context, auctionID int64) error {
	result, err := r.db.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("status = ?", models.AuctionStatusCancelled).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", auctionID).
		Where("status IN (?)", bun.In([]models.AuctionStatus{
			models.AuctionStatusDraft, models.AuctionStatusActive, models.AuctionStatusExtended,
		})).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel auction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("auction %d cannot be cancelled in its current state", auctionID)
	}
	return nil
}

func (r *auctionRepository) InviteBidder(ctx context.Context, auctionID, userID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("invited_ids = array_append(invited_ids, ?)", userID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", auctionID).
		Where("private = true").
		Where("NOT (invited_ids @> ARRAY[?]::bigint[])", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to invite bidder: %w", err)
	}
	return nil
}

func (r *auctionRepository) GetAuctionBids(ctx context.Context, auctionID int64) ([]*models.Bid, error) {
	var bids []*models.Bid
	err := r.db.NewSelect().
		Model(&bids).
		Where("auction_id = ?", auctionID).
		Order("amount DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction bids: %w", err)
	}
	return bids, nil
}

func (r *auctionRepository) GetUserBids(ctx context.Context, userID int64) ([]*models.Bid, error) {
	var bids []*models.Bid
	err := r.db.NewSelect().
		Model(&bids).
		Where("bidder_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bids: %w", err)
	}
	return bids, nil
}

// GetSoldComparables returns sold auctions joined against properties of the
// given kind and city, used by the valuation service.
func (r *auctionRepository) GetSoldComparables(ctx context.Context, kind models.PropertyKind, city string, since time.Time) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.NewSelect().
		Model(&auctions).
		Join("JOIN properties AS p ON p.id = a.property_id").
		Where("a.status = ?", models.AuctionStatusSold).
		Where("p.kind = ?", kind).
		Where("lower(p.city) = lower(?)", city).
		Where("a.updated_at >= ?", since).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sold comparables: %w", err)
	}
	return auctions, nil
}
