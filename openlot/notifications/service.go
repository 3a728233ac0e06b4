package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
)

// Service stores notifications and fans them out. The publisher is
// optional: without one, notifications only land in the database.
type Service struct {
	repo      repositories.NotificationRepository
	publisher Publisher
}

func NewService(repo repositories.NotificationRepository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Notify writes the notification row and publishes the matching event.
// Publishing is best-effort: a broker failure is logged, never returned,
// so it cannot fail the request that triggered the notification.
func (s *Service) Notify(ctx context.Context, userID int64, kind models.NotificationKind, title, body string, payload map[string]any) error {
	notification := &models.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Body:    body,
		Payload: payload,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.publisher == nil {
		return nil
	}

	event := Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      string(kind),
		Title:     title,
		Body:      body,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	if err := s.publisher.Publish(ctx, "notification."+string(kind), event); err != nil {
		slog.Error("Failed to publish notification event",
			slog.String("kind", string(kind)),
			slog.Int64("user_id", userID),
			slog.Any("error", err))
	}

	return nil
}
