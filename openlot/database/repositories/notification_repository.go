package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/openlot/openlot/openlot/database/models"
	"github.com/uptrace/bun"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type notificationRepository struct {
	db *bun.DB
}

func NewNotificationRepository(db *bun.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notification.CreatedAt = time.Now()

	_, err := r.db.NewInsert().Model(notification).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var notifications []*models.Notification
	q := r.db.NewSelect().
		Model(&notifications).
		Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = false")
	}

	err := q.Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	result, err := r.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = true").
		Set("read_at = ?", time.Now()).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Where("read = false").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
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

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = true").
		Set("read_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("read = false").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
