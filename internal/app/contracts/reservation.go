package contracts

import (
	"context"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/subscription"
	"time"
)

type ReservationRepository interface {
	// InsertIfAbsent creates the reservation unless any document already
	// holds its key.
	InsertIfAbsent(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, reservationID string) (*models.Reservation, error)
	FindByFilter(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error)
	// MarkCancelled flips a booked reservation, false when nothing matched.
	MarkCancelled(ctx context.Context, reservationID string, cancelledAt time.Time, cancelledBy string) (bool, error)
	// FindUpcoming lists booked reservations with from <= appointmentTs < to.
	FindUpcoming(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
}

// ReservationChangeFeed signals whenever a reservation matching filter may
// have changed. The channel closes when ctx is done or the feed fails.
type ReservationChangeFeed interface {
	Watch(ctx context.Context, filter models.ReservationFilter) (<-chan struct{}, error)
}

type ReservationUsecase interface {
	Book(ctx context.Context, session *models.Session, request models.BookRequest) (*models.Reservation, error)
	Cancel(ctx context.Context, session *models.Session, reservationID string) (*models.Reservation, error)
	FindByID(ctx context.Context, session *models.Session, reservationID string) (*models.Reservation, error)
	Availability(ctx context.Context, doctorID, date string) ([]models.SlotAvailability, error)
}

type AppointmentProjector interface {
	Subscribe(ctx context.Context, session *models.Session, filter models.ReservationFilter) (*subscription.Subscription[[]models.Reservation], error)
	HandleIdentityChange(change models.IdentityChange)
	CloseAll()
}
