package reminders

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/utils"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultCronSpec    = "@every 15m"
	defaultLead        = 2 * time.Hour
	leaderLockTTL      = 2 * time.Minute
	reminderMarkerSlop = time.Hour
)

// Worker periodically publishes a reminder for every booked appointment that
// starts within the configured lead time. Each reservation is reminded once.
type Worker struct {
	log          *zap.Logger
	cfg          *config.InternalConfig
	locker       contracts.LockerService
	redis        contracts.RedisRepository
	reservations contracts.ReservationRepository
	publisher    contracts.BookingEventPublisher
	now          func() time.Time
	cron         *cron.Cron
	spec         string
	runCtx       context.Context
	cancel       context.CancelFunc
}

func NewWorker(
	logger *zap.Logger,
	internalConfig *config.InternalConfig,
	lockerService contracts.LockerService,
	redisRepository contracts.RedisRepository,
	reservationRepository contracts.ReservationRepository,
	publisher contracts.BookingEventPublisher,
) *Worker {
	return &Worker{
		log:          logger,
		cfg:          internalConfig,
		locker:       lockerService,
		redis:        redisRepository,
		reservations: reservationRepository,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)

	spec := defaultCronSpec
	if w.cfg != nil && w.cfg.Booking.ReminderCronSpec != "" {
		spec = w.cfg.Booking.ReminderCronSpec
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { w.runOnce(w.runCtx) }); err != nil {
		w.log.Warn("reminders.Worker invalid cron spec, falling back to default",
			zap.String(constvars.LoggingCronSpecKey, spec),
			zap.Error(err),
		)
		spec = defaultCronSpec
		c = cron.New()
		_, _ = c.AddFunc(spec, func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
	w.spec = spec

	w.log.Info("reminders.Worker started", zap.String(constvars.LoggingCronSpecKey, spec))
}

// Stop waits for a running pass to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *Worker) lead() time.Duration {
	if w.cfg == nil || w.cfg.Booking.ReminderLeadInMinutes <= 0 {
		return defaultLead
	}
	return time.Duration(w.cfg.Booking.ReminderLeadInMinutes) * time.Minute
}

// runOnce returns how many reminders were published in this pass.
func (w *Worker) runOnce(ctx context.Context) int {
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, utils.GenerateRequestID())
	requestID := utils.GetRequestID(ctx)

	// only one instance sends reminders per pass
	acquired, token, err := w.locker.TryLock(ctx, constvars.RedisKeyReminderLeader, leaderLockTTL)
	if err != nil {
		w.log.Warn("reminders.Worker leader lock attempt failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return 0
	}
	if !acquired {
		w.log.Info("reminders.Worker leader lock held by another instance",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return 0
	}
	defer func() {
		_ = w.locker.Unlock(context.WithoutCancel(ctx), constvars.RedisKeyReminderLeader, token)
	}()

	now := w.now()
	lead := w.lead()
	upcoming, err := w.reservations.FindUpcoming(ctx, now, now.Add(lead))
	if err != nil {
		w.log.Error("reminders.Worker error calling ReservationRepository.FindUpcoming",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return 0
	}

	sent := 0
	for i := range upcoming {
		reservation := &upcoming[i]
		markerKey := constvars.RedisKeyReminderPrefix + reservation.ID

		first, err := w.redis.TrySetNX(ctx, markerKey, now.Unix(), lead+reminderMarkerSlop)
		if err != nil {
			w.log.Warn("reminders.Worker error marking reservation",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingReservationIDKey, reservation.ID),
				zap.Error(err),
			)
			continue
		}
		if !first {
			continue
		}

		event := models.NewBookingEvent(models.BookingReminder, reservation, "", now)
		if err := w.publisher.Publish(ctx, event); err != nil {
			w.log.Warn("reminders.Worker publish failed, will retry next pass",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingReservationIDKey, reservation.ID),
				zap.Error(err),
			)
			if err := w.redis.Delete(ctx, markerKey); err != nil {
				w.log.Error("reminders.Worker error clearing reminder marker, reservation will not be retried",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.String(constvars.LoggingReservationIDKey, reservation.ID),
					zap.String(constvars.LoggingRedisKey, markerKey),
					zap.Error(err),
				)
			}
			continue
		}
		sent++
	}

	w.log.Info("reminders.Worker pass finished",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseCountKey, sent),
	)
	return sent
}
