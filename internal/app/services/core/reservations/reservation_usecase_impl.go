package reservations

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

const bookingRateWindowSec = 60

type reservationUsecase struct {
	ReservationRepository contracts.ReservationRepository
	ProfileRepository     contracts.ProfileRepository
	LockerService         contracts.LockerService
	RateLimiter           contracts.ResourceLimiter
	EventPublisher        contracts.BookingEventPublisher
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
	location              *time.Location
	now                   func() time.Time
}

func NewReservationUsecase(
	reservationRepository contracts.ReservationRepository,
	profileRepository contracts.ProfileRepository,
	lockerService contracts.LockerService,
	rateLimiter contracts.ResourceLimiter,
	eventPublisher contracts.BookingEventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ReservationUsecase {
	return newReservationUsecase(
		reservationRepository,
		profileRepository,
		lockerService,
		rateLimiter,
		eventPublisher,
		internalConfig,
		logger,
		time.Now,
	)
}

func newReservationUsecase(
	reservationRepository contracts.ReservationRepository,
	profileRepository contracts.ProfileRepository,
	lockerService contracts.LockerService,
	rateLimiter contracts.ResourceLimiter,
	eventPublisher contracts.BookingEventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
	now func() time.Time,
) *reservationUsecase {
	location := time.Local
	if internalConfig.App.Timezone != "" {
		if loc, err := time.LoadLocation(internalConfig.App.Timezone); err == nil {
			location = loc
		} else {
			logger.Warn("reservationUsecase unknown timezone, falling back to local",
				zap.String("timezone", internalConfig.App.Timezone),
				zap.Error(err),
			)
		}
	}

	return &reservationUsecase{
		ReservationRepository: reservationRepository,
		ProfileRepository:     profileRepository,
		LockerService:         lockerService,
		RateLimiter:           rateLimiter,
		EventPublisher:        eventPublisher,
		InternalConfig:        internalConfig,
		Log:                   logger,
		location:              location,
		now:                   now,
	}
}

func (uc *reservationUsecase) Book(ctx context.Context, session *models.Session, request models.BookRequest) (*models.Reservation, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("reservationUsecase.Book called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.String(constvars.LoggingPatientIDKey, request.PatientID),
		zap.String(constvars.LoggingDateKey, request.Date),
		zap.String(constvars.LoggingSlotKey, request.Slot),
	)

	if err := utils.ValidateStruct(request); err != nil {
		uc.Log.Error("reservationUsecase.Book invalid request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrInputValidation(err)
	}

	appointmentTs, err := models.AppointmentInstant(request.Date, request.Slot, uc.location)
	if err != nil {
		return nil, exceptions.ErrInvalidSlot(err)
	}

	if session.IsPatient() && request.PatientID != session.UID {
		utils.LogSecurityEvent(uc.Log, "book_for_other_patient", requestID,
			zap.String(constvars.LoggingUserIDKey, session.UID),
			zap.String(constvars.LoggingPatientIDKey, request.PatientID),
		)
		return nil, exceptions.ErrBookForOtherPatient(nil)
	}
	if !session.IsPatient() && !session.IsDoctor() {
		return nil, exceptions.ErrRoleNotAllowed(nil)
	}

	if err := uc.applyBookingRateLimit(ctx, session.UID); err != nil {
		uc.Log.Warn("reservationUsecase.Book rate limited",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingUserIDKey, session.UID),
			zap.Error(err),
		)
		return nil, err
	}

	doctor, patient, err := uc.resolveParticipants(ctx, request)
	if err != nil {
		uc.Log.Error("reservationUsecase.Book error resolving participants",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	key := request.Key()
	lockKey := constvars.RedisKeyLockPrefix + key
	lockTTL := time.Duration(uc.InternalConfig.Booking.LockTTLInSeconds) * time.Second
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}

	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, lockTTL)
	if err != nil {
		uc.Log.Error("reservationUsecase.Book error calling LockerService.TryLock",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrStoreUnavailable(err)
	}
	if !acquired {
		return nil, exceptions.ErrSlotBeingBooked(nil)
	}
	defer func() {
		if err := uc.LockerService.Unlock(context.WithoutCancel(ctx), lockKey, lockValue); err != nil {
			uc.Log.Warn("reservationUsecase.Book error releasing lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, lockKey),
				zap.Error(err),
			)
		}
	}()

	reservation := &models.Reservation{
		ID:            key,
		DoctorID:      doctor.UID,
		DoctorName:    doctor.DisplayName,
		PatientID:     patient.UID,
		PatientName:   patient.DisplayName,
		Date:          request.Date,
		Slot:          request.Slot,
		Status:        models.ReservationBooked,
		AppointmentTs: appointmentTs,
	}

	if err := uc.ReservationRepository.InsertIfAbsent(ctx, reservation); err != nil {
		uc.Log.Error("reservationUsecase.Book error calling ReservationRepository.InsertIfAbsent",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReservationIDKey, key),
			zap.Error(err),
		)
		return nil, err
	}

	uc.publish(ctx, models.NewBookingEvent(models.BookingCreated, reservation, session.UID, uc.now()))

	uc.Log.Info("reservationUsecase.Book succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReservationIDKey, key),
	)
	return reservation, nil
}

func (uc *reservationUsecase) applyBookingRateLimit(ctx context.Context, uid string) error {
	if uc.RateLimiter == nil || uc.InternalConfig.Booking.MaxAttemptsPerMinute <= 0 {
		return nil
	}

	decision, err := uc.RateLimiter.ApplyResourceLimiter(ctx, &models.RateLimitInput{
		ResourceName:      uid,
		LimiterGroupName:  constvars.RedisKeyBookingRatePrefix,
		WindowDurationSec: bookingRateWindowSec,
		MaxQuota:          uc.InternalConfig.Booking.MaxAttemptsPerMinute,
		NowUTC:            uc.now().UTC(),
	})
	if err != nil {
		return exceptions.ErrStoreUnavailable(err)
	}
	if !decision.Allowed {
		return exceptions.ErrBookingRateLimited(nil).WithRetryAfter(decision.RetryAfterSecs)
	}
	return nil
}

func (uc *reservationUsecase) resolveParticipants(ctx context.Context, request models.BookRequest) (*models.Profile, *models.Profile, error) {
	doctor, err := uc.ProfileRepository.FindByID(ctx, request.DoctorID)
	if err != nil {
		return nil, nil, err
	}
	if !doctor.IsDoctor() {
		return nil, nil, exceptions.ErrDoctorNotFound(nil)
	}

	patient, err := uc.ProfileRepository.FindByID(ctx, request.PatientID)
	if err != nil {
		return nil, nil, err
	}
	if !patient.IsPatient() {
		return nil, nil, exceptions.ErrPatientNotFound(nil)
	}
	return doctor, patient, nil
}

func (uc *reservationUsecase) Cancel(ctx context.Context, session *models.Session, reservationID string) (*models.Reservation, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("reservationUsecase.Cancel called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
		zap.String(constvars.LoggingReservationIDKey, reservationID),
	)

	reservation, err := uc.FindByID(ctx, session, reservationID)
	if err != nil {
		uc.Log.Error("reservationUsecase.Cancel error calling FindByID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if !reservation.IsBooked() {
		return nil, exceptions.ErrReservationNotActive(nil)
	}

	now := uc.now()
	if !reservation.CanCancelAt(now) {
		uc.Log.Info("reservationUsecase.Cancel outside cancellation window",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Time("appointment_ts", reservation.AppointmentTs),
		)
		return nil, exceptions.ErrCancelTooLate(nil)
	}

	cancelled, err := uc.ReservationRepository.MarkCancelled(ctx, reservationID, now, session.UID)
	if err != nil {
		uc.Log.Error("reservationUsecase.Cancel error calling ReservationRepository.MarkCancelled",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !cancelled {
		return nil, exceptions.ErrReservationNotActive(nil)
	}

	reservation.Status = models.ReservationCancelled
	reservation.CancelledAt = &now
	reservation.CancelledBy = session.UID

	uc.publish(ctx, models.NewBookingEvent(models.BookingCancelled, reservation, session.UID, now))

	uc.Log.Info("reservationUsecase.Cancel succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReservationIDKey, reservationID),
	)
	return reservation, nil
}

func (uc *reservationUsecase) FindByID(ctx context.Context, session *models.Session, reservationID string) (*models.Reservation, error) {
	reservation, err := uc.ReservationRepository.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, exceptions.ErrReservationNotFound(nil)
	}
	if !reservation.IsParticipant(session.UID) {
		utils.LogSecurityEvent(uc.Log, "reservation_access_denied", utils.GetRequestID(ctx),
			zap.String(constvars.LoggingUserIDKey, session.UID),
			zap.String(constvars.LoggingReservationIDKey, reservationID),
		)
		return nil, exceptions.ErrReservationNotParticipant(nil)
	}
	return reservation, nil
}

// Availability lists every bookable slot of the day, taken when a booked
// reservation holds it.
func (uc *reservationUsecase) Availability(ctx context.Context, doctorID, date string) ([]models.SlotAvailability, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("reservationUsecase.Availability called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.String(constvars.LoggingDateKey, date),
	)

	filter := models.ReservationFilter{DoctorID: doctorID, Date: date, Status: models.ReservationBooked}
	if err := filter.Validate(); err != nil {
		return nil, exceptions.ErrCannotParseDate(err)
	}

	booked, err := uc.ReservationRepository.FindByFilter(ctx, filter)
	if err != nil {
		uc.Log.Error("reservationUsecase.Availability error calling ReservationRepository.FindByFilter",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	taken := make(map[string]bool, len(booked))
	for _, r := range booked {
		taken[r.Slot] = true
	}

	slots := make([]models.SlotAvailability, 0, len(constvars.BookableSlots))
	for _, slot := range constvars.BookableSlots {
		slots = append(slots, models.SlotAvailability{Slot: slot, Taken: taken[slot]})
	}

	uc.Log.Info("reservationUsecase.Availability succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseCountKey, len(booked)),
	)
	return slots, nil
}

// publish never fails the calling operation.
func (uc *reservationUsecase) publish(ctx context.Context, event *models.BookingEvent) {
	if uc.EventPublisher == nil {
		return
	}
	if err := uc.EventPublisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		uc.Log.Warn("reservationUsecase.publish failed",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingRoutingKey, string(event.Type)),
			zap.Error(err),
		)
	}
}
