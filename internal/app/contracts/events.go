package contracts

import (
	"context"
	"docbook-service/internal/app/models"
)

type BookingEventPublisher interface {
	Publish(ctx context.Context, event *models.BookingEvent) error
}

type NotificationService interface {
	Record(ctx context.Context, event *models.BookingEvent) error
	ListNotifications(ctx context.Context, session *models.Session) ([]models.Notification, error)
}
