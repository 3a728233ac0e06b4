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

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id int64) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Archive(ctx context.Context, id int64) error
	Search(ctx context.Context, filters PropertyFilters) ([]*models.Property, int, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Property, error)
	SearchIndex(ctx context.Context) ([]*models.Property, error)
	AddPhotoKey(ctx context.Context, id int64, key string) error
}

type propertyRepository struct {
	db *bun.DB
}

func NewPropertyRepository(db *bun.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	property.CreatedAt = time.Now()
	property.UpdatedAt = time.Now()
	if property.Status == "" {
		property.Status = models.PropertyStatusDraft
	}

	_, err := r.db.NewInsert().Model(property).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	property := new(models.Property)
	err := r.db.NewSelect().
		Model(property).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return property, nil
}

func (r *propertyRepository) Update(ctx context.Context, property *models.Property) error {
	property.UpdatedAt = time.Now()

	result, err := r.db.NewUpdate().
		Model(property).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *propertyRepository) Archive(ctx context.Context, id int64) error {
	result, err := r.db.NewUpdate().
		Model((*models.Property)(nil)).
		Set("status = ?", models.PropertyStatusArchived).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("status != ?", models.PropertyStatusArchived).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to archive property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns one page of matching properties plus the total match count.
func (r *propertyRepository) Search(ctx context.Context, filters PropertyFilters) ([]*models.Property, int, error) {
	filters.Normalize()

	var properties []*models.Property
	q := r.db.NewSelect().Model(&properties)
	q = filters.Apply(q)

	total, err := q.Limit(filters.PerPage).
		Offset(filters.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search properties: %w", err)
	}

	return properties, total, nil
}

func (r *propertyRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Property, error) {
	var properties []*models.Property
	err := r.db.NewSelect().
		Model(&properties).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties by owner: %w", err)
	}
	return properties, nil
}

// SearchIndex loads the listed properties used to build the in-memory fuzzy
// search index. Only id, title and city are selected.
func (r *propertyRepository) SearchIndex(ctx context.Context) ([]*models.Property, error) {
	var properties []*models.Property
	err := r.db.NewSelect().
		Model(&properties).
		Column("id", "title", "city").
		Where("status = ?", models.PropertyStatusListed).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load search index: %w", err)
	}
	return properties, nil
}

func (r *propertyRepository) AddPhotoKey(ctx context.Context, id int64, key string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Property)(nil)).
		Set("photo_keys = array_append(photo_keys, ?)", key).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add photo key: %w", err)
	}
	return nil
}
