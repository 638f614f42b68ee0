package events

import (
	"context"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/redis/redistest"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleEvent(eventType models.BookingEventType, reservationID string) *models.BookingEvent {
	return &models.BookingEvent{
		Type:          eventType,
		ReservationID: reservationID,
		DoctorID:      "d1",
		DoctorName:    "Dr. Strange",
		PatientID:     "p1",
		PatientName:   "Peter",
		Date:          "2024-06-01",
		Slot:          "09:00",
		Status:        models.ReservationBooked,
		OccurredAt:    time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()

	t.Run("Record Notifies Both Participants", func(t *testing.T) {
		svc := NewNotificationService(redistest.NewFakeRepository(), 50, zap.NewNop())
		require.NoError(t, svc.Record(ctx, sampleEvent(models.BookingCreated, "d1_2024-06-01_09-00")))

		patientList, err := svc.ListNotifications(ctx, &models.Session{UID: "p1"})
		require.NoError(t, err)
		require.Len(t, patientList, 1)
		assert.Equal(t, "Your appointment with Dr. Strange on 2024-06-01 at 09:00 is booked", patientList[0].Message)

		doctorList, err := svc.ListNotifications(ctx, &models.Session{UID: "d1"})
		require.NoError(t, err)
		require.Len(t, doctorList, 1)
		assert.Equal(t, "New appointment with Peter on 2024-06-01 at 09:00", doctorList[0].Message)
	})

	t.Run("Newest First And Capped", func(t *testing.T) {
		svc := NewNotificationService(redistest.NewFakeRepository(), 3, zap.NewNop())
		for i := 0; i < 5; i++ {
			require.NoError(t, svc.Record(ctx, sampleEvent(models.BookingCreated, fmt.Sprintf("r%d", i))))
		}

		list, err := svc.ListNotifications(ctx, &models.Session{UID: "p1"})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "r4", list[0].ReservationID)
		assert.Equal(t, "r2", list[2].ReservationID)
	})

	t.Run("Cancellation Message", func(t *testing.T) {
		svc := NewNotificationService(redistest.NewFakeRepository(), 50, zap.NewNop())
		require.NoError(t, svc.Record(ctx, sampleEvent(models.BookingCancelled, "r1")))

		list, err := svc.ListNotifications(ctx, &models.Session{UID: "d1"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.BookingCancelled, list[0].Type)
		assert.Contains(t, list[0].Message, "was cancelled")
	})

	t.Run("Redis Failure Is Returned", func(t *testing.T) {
		repo := redistest.NewFakeRepository()
		repo.FailAll = true
		svc := NewNotificationService(repo, 50, zap.NewNop())

		assert.ErrorIs(t, svc.Record(ctx, sampleEvent(models.BookingCreated, "r1")), redistest.ErrInjected)
	})
}

func TestNotificationConsumerHandleMessage(t *testing.T) {
	ctx := context.Background()
	repo := redistest.NewFakeRepository()
	notifications := NewNotificationService(repo, 50, zap.NewNop())
	consumer := NewNotificationConsumer(nil, notifications, zap.NewNop())

	t.Run("Valid Event Is Recorded", func(t *testing.T) {
		body, err := json.Marshal(sampleEvent(models.BookingCreated, "r1"))
		require.NoError(t, err)

		require.NoError(t, consumer.handleMessage(ctx, body))

		list, err := notifications.ListNotifications(ctx, &models.Session{UID: "p1"})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Malformed Body Is Rejected", func(t *testing.T) {
		assert.Error(t, consumer.handleMessage(ctx, []byte("{not json")))
	})
}
