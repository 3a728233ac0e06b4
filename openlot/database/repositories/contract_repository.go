package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/uptrace/bun"
)

type ContractRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Contract, error)
	GetByAuctionID(ctx context.Context, auctionID int64) (*models.Contract, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Contract, error)

	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListPayments(ctx context.Context, contractID int64) ([]*models.Payment, error)
	ConfirmPayment(ctx context.Context, paymentID int64) (*models.Contract, error)
	FailPayment(ctx context.Context, paymentID int64) error
	CompleteContract(ctx context.Context, contractID int64) error
}

type contractRepository struct {
	db *bun.DB
}

func NewContractRepository(db *bun.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) GetByID(ctx context.Context, id int64) (*models.Contract, error) {
	contract := new(models.Contract)
	err := r.db.NewSelect().
		Model(contract).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return contract, nil
}

func (r *contractRepository) GetByAuctionID(ctx context.Context, auctionID int64) (*models.Contract, error) {
	contract := new(models.Contract)
	err := r.db.NewSelect().
		Model(contract).
		Where("auction_id = ?", auctionID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract by auction: %w", err)
	}
	return contract, nil
}

func (r *contractRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.NewSelect().
		Model(&contracts).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}

func (r *contractRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	payment.Reference = uuid.NewString()
	payment.Status = models.PaymentStatusPending
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().Model(payment).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *contractRepository) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment := new(models.Payment)
	err := r.db.NewSelect().
		Model(payment).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (r *contractRepository) ListPayments(ctx context.Context, contractID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.NewSelect().
		Model(&payments).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// ConfirmPayment marks a pending payment confirmed, writes the ledger row
// and moves the contract to paid once confirmed payments cover the price.
// Everything happens in one transaction.
func (r *contractRepository) ConfirmPayment(ctx context.Context, paymentID int64) (*models.Contract, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	payment := new(models.Payment)
	err = tx.NewSelect().
		Model(payment).
		Where("id = ?", paymentID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment for update: %w", err)
	}

	if payment.Status != models.PaymentStatusPending {
		return nil, fmt.Errorf("payment %d is not pending (current status: %s)", paymentID, payment.Status)
	}

	contract := new(models.Contract)
	err = tx.NewSelect().
		Model(contract).
		Where("id = ?", payment.ContractID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract for update: %w", err)
	}

	if contract.Status != models.ContractStatusPendingPayment {
		return nil, fmt.Errorf("contract %d is not awaiting payment (current status: %s)", contract.ID, contract.Status)
	}

	_, err = tx.NewUpdate().
		Model((*models.Payment)(nil)).
		Set("status = ?", models.PaymentStatusConfirmed).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", paymentID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	ledger := &models.Transaction{
		Reference:  uuid.NewString(),
		ContractID: contract.ID,
		PaymentID:  payment.ID,
		FromUserID: payment.PayerID,
		ToUserID:   contract.SellerID,
		Amount:     payment.Amount,
		RecordedAt: time.Now(),
	}
	if _, err = tx.NewInsert().Model(ledger).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	// The sum runs inside the transaction, so it already includes the
	// payment confirmed above.
	var confirmed int64
	err = tx.NewSelect().
		Model((*models.Payment)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("contract_id = ?", contract.ID).
		Where("status = ?", models.PaymentStatusConfirmed).
		Scan(ctx, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to sum confirmed payments: %w", err)
	}

	if confirmed >= contract.Price {
		_, err = tx.NewUpdate().
			Model((*models.Contract)(nil)).
			Set("status = ?", models.ContractStatusPaid).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", contract.ID).
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to mark contract paid: %w", err)
		}
		contract.Status = models.ContractStatusPaid
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment confirmation: %w", err)
	}
	return contract, nil
}

func (r *contractRepository) FailPayment(ctx context.Context, paymentID int64) error {
	result, err := r.db.NewUpdate().
		Model((*models.Payment)(nil)).
		Set("status = ?", models.PaymentStatusFailed).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", paymentID).
		Where("status = ?", models.PaymentStatusPending).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to fail payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("payment %d is not pending", paymentID)
	}
	return nil
}

// CompleteContract finishes a paid contract and transfers property
// ownership to the buyer in the same transaction.
func (r *contractRepository) CompleteContract(ctx context.Context, contractID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	contract := new(models.Contract)
	err = tx.NewSelect().
		Model(contract).
		Where("id = ?", contractID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get contract for update: %w", err)
	}

	if contract.Status != models.ContractStatusPaid {
		return fmt.Errorf("contract %d is not paid (current status: %s)", contractID, contract.Status)
	}

	_, err = tx.NewUpdate().
		Model((*models.Contract)(nil)).
		Set("status = ?", models.ContractStatusCompleted).
		Set("completed_at = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", contractID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete contract: %w", err)
	}

	_, err = tx.NewUpdate().
		Model((*models.Property)(nil)).
		Set("owner_id = ?", contract.BuyerID).
		Set("status = ?", models.PropertyStatusDraft).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", contract.PropertyID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to transfer property to buyer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contract completion: %w", err)
	}
	return nil
}
