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

type MessageRepository interface {
	CreateThread(ctx context.Context, thread *models.MessageThread, participantIDs []int64) error
	GetThread(ctx context.Context, id int64) (*models.MessageThread, error)
	ListThreadsByUser(ctx context.Context, userID int64) ([]*models.MessageThread, error)
	Participants(ctx context.Context, threadID int64) ([]*models.ThreadParticipant, error)
	IsParticipant(ctx context.Context, threadID, userID int64) (bool, error)
	AddMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, threadID int64, limit, offset int) ([]*models.Message, error)
	MarkRead(ctx context.Context, threadID, userID int64) error
}

type messageRepository struct {
	db *bun.DB
}

func NewMessageRepository(db *bun.DB) MessageRepository {
	return &messageRepository{db: db}
}

// CreateThread inserts the thread and its participants in one transaction.
func (r *messageRepository) CreateThread(ctx context.Context, thread *models.MessageThread, participantIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	thread.CreatedAt = time.Now()
	if _, err := tx.NewInsert().Model(thread).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}

	now := time.Now()
	participants := make([]*models.ThreadParticipant, 0, len(participantIDs))
	for _, userID := range participantIDs {
		participants = append(participants, &models.ThreadParticipant{
			ThreadID: thread.ID,
			UserID:   userID,
			JoinedAt: now,
		})
	}
	if len(participants) > 0 {
		if _, err := tx.NewInsert().Model(&participants).Exec(ctx); err != nil {
			return fmt.Errorf("failed to add participants: %w", err)
		}
	}

	return tx.Commit()
}

func (r *messageRepository) GetThread(ctx context.Context, id int64) (*models.MessageThread, error) {
	thread := new(models.MessageThread)
	err := r.db.NewSelect().
		Model(thread).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return thread, nil
}

func (r *messageRepository) ListThreadsByUser(ctx context.Context, userID int64) ([]*models.MessageThread, error) {
	var threads []*models.MessageThread
	err := r.db.NewSelect().
		Model(&threads).
		Join("JOIN thread_participants AS tp ON tp.thread_id = mt.id").
		Where("tp.user_id = ?", userID).
		Order("last_message_at DESC NULLS LAST").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, nil
}

func (r *messageRepository) Participants(ctx context.Context, threadID int64) ([]*models.ThreadParticipant, error) {
	var participants []*models.ThreadParticipant
	err := r.db.NewSelect().
		Model(&participants).
		Where("thread_id = ?", threadID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (r *messageRepository) IsParticipant(ctx context.Context, threadID, userID int64) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.ThreadParticipant)(nil)).
		Where("thread_id = ?", threadID).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

// AddMessage inserts the message and bumps the thread's last_message_at.
func (r *messageRepository) AddMessage(ctx context.Context, message *models.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	message.CreatedAt = time.Now()
	if _, err := tx.NewInsert().Model(message).Exec(ctx); err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}

	_, err = tx.NewUpdate().
		Model((*models.MessageThread)(nil)).
		Set("last_message_at = ?", message.CreatedAt).
		Where("id = ?", message.ThreadID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update thread timestamp: %w", err)
	}

	return tx.Commit()
}

func (r *messageRepository) ListMessages(ctx context.Context, threadID int64, limit, offset int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []*models.Message
	err := r.db.NewSelect().
		Model(&messages).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, threadID, userID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.ThreadParticipant)(nil)).
		Set("read_at = ?", time.Now()).
		Where("thread_id = ?", threadID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}
