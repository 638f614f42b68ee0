package events

import (
	"context"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type notificationService struct {
	RedisRepository contracts.RedisRepository
	MaxListSize     int
	Log             *zap.Logger
}

func NewNotificationService(redisRepository contracts.RedisRepository, maxListSize int, logger *zap.Logger) contracts.NotificationService {
	if maxListSize <= 0 {
		maxListSize = 50
	}
	return &notificationService{
		RedisRepository: redisRepository,
		MaxListSize:     maxListSize,
		Log:             logger,
	}
}

func notificationsKey(uid string) string {
	return constvars.RedisKeyNotificationsPrefix + uid
}

// Record stores one notification for the doctor and one for the patient,
// newest first.
func (s *notificationService) Record(ctx context.Context, event *models.BookingEvent) error {
	recipients := map[string]string{
		event.PatientID: buildPatientMessage(event),
		event.DoctorID:  buildDoctorMessage(event),
	}

	for uid, message := range recipients {
		if uid == "" {
			continue
		}
		notification := models.Notification{
			ReservationID: event.ReservationID,
			Type:          event.Type,
			Message:       message,
			CreatedAt:     event.OccurredAt,
		}
		payload, err := json.Marshal(notification)
		if err != nil {
			return exceptions.ErrCannotMarshalJSON(err)
		}

		key := notificationsKey(uid)
		if err := s.RedisRepository.PushToList(ctx, key, string(payload)); err != nil {
			return err
		}
		if err := s.RedisRepository.TrimList(ctx, key, 0, int64(s.MaxListSize-1)); err != nil {
			return err
		}
	}

	s.Log.Info("notificationService.Record succeeded",
		zap.String(constvars.LoggingReservationIDKey, event.ReservationID),
		zap.String(constvars.LoggingRoutingKey, string(event.Type)),
	)
	return nil
}

func (s *notificationService) ListNotifications(ctx context.Context, session *models.Session) ([]models.Notification, error) {
	requestID := utils.GetRequestID(ctx)
	s.Log.Info("notificationService.ListNotifications called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
	)

	values, err := s.RedisRepository.GetList(ctx, notificationsKey(session.UID), 0, -1)
	if err != nil {
		s.Log.Error("notificationService.ListNotifications error calling RedisRepository.GetList",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	notifications := make([]models.Notification, 0, len(values))
	for _, value := range values {
		var notification models.Notification
		if err := json.Unmarshal([]byte(value), &notification); err != nil {
			s.Log.Warn("notificationService.ListNotifications skipping malformed entry",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			continue
		}
		notifications = append(notifications, notification)
	}

	s.Log.Info("notificationService.ListNotifications succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseCountKey, len(notifications)),
	)
	return notifications, nil
}

func buildPatientMessage(event *models.BookingEvent) string {
	switch event.Type {
	case models.BookingCancelled:
		return fmt.Sprintf("Your appointment with %s on %s at %s was cancelled", event.DoctorName, event.Date, event.Slot)
	case models.BookingReminder:
		return fmt.Sprintf("Reminder: your appointment with %s is on %s at %s", event.DoctorName, event.Date, event.Slot)
	default:
		return fmt.Sprintf("Your appointment with %s on %s at %s is booked", event.DoctorName, event.Date, event.Slot)
	}
}

func buildDoctorMessage(event *models.BookingEvent) string {
	switch event.Type {
	case models.BookingCancelled:
		return fmt.Sprintf("Appointment with %s on %s at %s was cancelled", event.PatientName, event.Date, event.Slot)
	case models.BookingReminder:
		return fmt.Sprintf("Upcoming appointment with %s on %s at %s", event.PatientName, event.Date, event.Slot)
	default:
		return fmt.Sprintf("New appointment with %s on %s at %s", event.PatientName, event.Date, event.Slot)
	}
}
