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

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Document, error)
	ListPending(ctx context.Context) ([]*models.Document, error)
	Review(ctx context.Context, id, reviewerID int64, status models.DocumentStatus, note string) error
}

type documentRepository struct {
	db *bun.DB
}

func NewDocumentRepository(db *bun.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	document.Status = models.DocumentStatusPending
	document.CreatedAt = time.Now()
	document.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().Model(document).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	document := new(models.Document)
	err := r.db.NewSelect().
		Model(document).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return document, nil
}

func (r *documentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Document, error) {
	var documents []*models.Document
	err := r.db.NewSelect().
		Model(&documents).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}

func (r *documentRepository) ListPending(ctx context.Context) ([]*models.Document, error) {
	var documents []*models.Document
	err := r.db.NewSelect().
		Model(&documents).
		Where("status = ?", models.DocumentStatusPending).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}
	return documents, nil
}

// Review resolves a pending document. The status guard in the WHERE clause
// keeps two admins from racing on the same document.
func (r *documentRepository) Review(ctx context.Context, id, reviewerID int64, status models.DocumentStatus, note string) error {
	if status != models.DocumentStatusApproved && status != models.DocumentStatusRejected {
		return fmt.Errorf("invalid review status: %s", status)
	}

	result, err := r.db.NewUpdate().
		Model((*models.Document)(nil)).
		Set("status = ?", status).
		Set("reviewer_id = ?", reviewerID).
		Set("reviewer_note = ?", note).
		Set("reviewed_at = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("status = ?", models.DocumentStatusPending).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to review document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("document %d is not pending review", id)
	}
	return nil
}
