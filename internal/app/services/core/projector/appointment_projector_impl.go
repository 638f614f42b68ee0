package projector

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/subscription"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type appointmentProjector struct {
	ReservationRepository contracts.ReservationRepository
	ChangeFeed            contracts.ReservationChangeFeed
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
	subscriptions         *subscription.Registry
}

func NewAppointmentProjector(
	reservationRepository contracts.ReservationRepository,
	changeFeed contracts.ReservationChangeFeed,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentProjector {
	return &appointmentProjector{
		ReservationRepository: reservationRepository,
		ChangeFeed:            changeFeed,
		InternalConfig:        internalConfig,
		Log:                   logger,
		subscriptions:         subscription.NewRegistry(),
	}
}

// Subscribe delivers the reservations matching filter, first as loaded and
// then again after every change. The subscription belongs to the session and
// is closed when it signs out.
func (p *appointmentProjector) Subscribe(ctx context.Context, session *models.Session, filter models.ReservationFilter) (*subscription.Subscription[[]models.Reservation], error) {
	requestID := utils.GetRequestID(ctx)
	p.Log.Info("appointmentProjector.Subscribe called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
		zap.Stringer(constvars.LoggingFilterKey, filter),
	)

	if err := filter.Validate(); err != nil {
		return nil, exceptions.ErrInvalidSubscriptionFilter(err)
	}

	redact, err := authorizeFilter(session, filter)
	if err != nil {
		utils.LogSecurityEvent(p.Log, "subscription_denied", requestID,
			zap.String(constvars.LoggingUserIDKey, session.UID),
			zap.Stringer(constvars.LoggingFilterKey, filter),
		)
		return nil, err
	}

	load := func(ctx context.Context) ([]models.Reservation, error) {
		reservations, err := p.ReservationRepository.FindByFilter(ctx, filter)
		if err != nil {
			return nil, err
		}
		if redact {
			redactForeignPatients(reservations, session.UID)
		}
		return reservations, nil
	}
	watch := func(ctx context.Context) (<-chan struct{}, error) {
		return p.ChangeFeed.Watch(ctx, filter)
	}

	ticket := p.subscriptions.Reserve(session.SessionID)
	sub, err := subscription.Start(ctx, subscription.Config{
		Name:             "appointments:" + filter.String(),
		Log:              p.Log,
		ReloadsPerSecond: p.InternalConfig.Projector.ReloadsPerSecond,
		ReloadBurst:      p.InternalConfig.Projector.ReloadBurst,
	}, load, watch)
	if err != nil {
		ticket.Release()
		p.Log.Error("appointmentProjector.Subscribe error starting subscription",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !ticket.Attach(sub) {
		p.Log.Info("appointmentProjector.Subscribe session signed out while starting",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, session.SessionID),
		)
		return nil, exceptions.ErrSessionNotFound(nil)
	}
	go func() {
		<-sub.Done()
		ticket.Release()
	}()

	p.Log.Info("appointmentProjector.Subscribe succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, session.SessionID),
		zap.Int(constvars.LoggingOpenStreamsKey, p.subscriptions.Count(session.SessionID)),
	)
	return sub, nil
}

// authorizeFilter reports whether snapshots must hide other patients.
func authorizeFilter(session *models.Session, filter models.ReservationFilter) (bool, error) {
	switch {
	case filter.IsAvailabilityView():
		return filter.DoctorID != session.UID, nil
	case filter.PatientID != "" && session.IsPatient() && filter.PatientID == session.UID:
		return false, nil
	case filter.DoctorID != "" && session.IsDoctor() && filter.DoctorID == session.UID:
		return false, nil
	}
	return false, exceptions.ErrSubscriptionNotAllowed(nil)
}

func redactForeignPatients(reservations []models.Reservation, uid string) {
	for i := range reservations {
		if reservations[i].IsParticipant(uid) {
			continue
		}
		reservations[i].PatientID = ""
		reservations[i].PatientName = ""
		reservations[i].CancelledBy = ""
	}
}

func (p *appointmentProjector) HandleIdentityChange(change models.IdentityChange) {
	if change.Type != models.IdentitySignedOut {
		return
	}
	closed := p.subscriptions.CloseOwner(change.SessionID)
	if closed > 0 {
		p.Log.Info("appointmentProjector.HandleIdentityChange closed subscriptions",
			zap.String(constvars.LoggingSessionIDKey, change.SessionID),
			zap.Int(constvars.LoggingResponseCountKey, closed),
		)
	}
}

func (p *appointmentProjector) CloseAll() {
	p.subscriptions.CloseAll()
}
