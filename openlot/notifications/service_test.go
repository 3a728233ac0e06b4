package notifications_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openlot/openlot/openlot/database/models"
	repomock "github.com/openlot/openlot/openlot/database/repositories/mock"
	"github.com/openlot/openlot/openlot/notifications"
	"github.com/openlot/openlot/openlot/notifications/mock"
	"go.uber.org/mock/gomock"
)

func TestServiceNotify(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockNotificationRepository(ctrl)
	publisher := mock.NewMockPublisher(ctrl)

	var stored *models.Notification
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *models.Notification) error {
			stored = n
			return nil
		})

	var published notifications.Event
	publisher.EXPECT().
		Publish(gomock.Any(), "notification.outbid", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, event notifications.Event) error {
			published = event
			return nil
		})

	service := notifications.NewService(repo, publisher)
	err := service.Notify(context.Background(), 7, models.NotificationOutbid,
		"You were outbid", "Someone raised the stakes",
		map[string]any{"auction_id": int64(3)})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if stored.UserID != 7 || stored.Kind != models.NotificationOutbid {
		t.Errorf("Notify() stored notification = %+v", stored)
	}
	if published.UserID != 7 || published.Kind != "outbid" || published.Title != "You were outbid" {
		t.Errorf("Notify() published event = %+v", published)
	}
	if published.ID == "" {
		t.Error("Notify() published event without an id")
	}
}

func TestServiceNotifyRepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockNotificationRepository(ctrl)
	publisher := mock.NewMockPublisher(ctrl)

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	// Nothing is published when the row cannot be written.
	service := notifications.NewService(repo, publisher)
	err := service.Notify(context.Background(), 7, models.NotificationOutbid, "t", "b", nil)
	if err == nil {
		t.Fatal("Notify() error = nil, want error")
	}
}

func TestServiceNotifyPublisherError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockNotificationRepository(ctrl)
	publisher := mock.NewMockPublisher(ctrl)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("broker gone"))

	// Publishing is best-effort; a broker failure must not fail the call.
	service := notifications.NewService(repo, publisher)
	if err := service.Notify(context.Background(), 7, models.NotificationNewMessage, "t", "b", nil); err != nil {
		t.Errorf("Notify() error = %v, want nil", err)
	}
}

func TestServiceNotifyWithoutPublisher(t *testing.T) {
	repo := repomock.NewMockNotificationRepository(gomock.NewController(t))
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	service := notifications.NewService(repo, nil)
	if err := service.Notify(context.Background(), 7, models.NotificationAuctionWon, "t", "b", nil); err != nil {
		t.Errorf("Notify() error = %v, want nil", err)
	}
}
