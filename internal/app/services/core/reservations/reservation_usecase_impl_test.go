package reservations

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/locker"
	"docbook-service/internal/app/services/shared/ratelimiter"
	"docbook-service/internal/app/services/shared/redis/redistest"
	"docbook-service/internal/pkg/exceptions"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReservationRepository struct {
	mu           sync.Mutex
	reservations map[string]models.Reservation
	calls        int32
	now          func() time.Time
}

func newFakeReservationRepository() *fakeReservationRepository {
	return &fakeReservationRepository{
		reservations: make(map[string]models.Reservation),
		now:          time.Now,
	}
}

func (r *fakeReservationRepository) InsertIfAbsent(ctx context.Context, reservation *models.Reservation) error {
	atomic.AddInt32(&r.calls, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.reservations[reservation.ID]; taken {
		return exceptions.ErrSlotAlreadyBooked(nil)
	}
	reservation.CreatedAt = r.now()
	r.reservations[reservation.ID] = *reservation
	return nil
}

func (r *fakeReservationRepository) FindByID(ctx context.Context, reservationID string) (*models.Reservation, error) {
	atomic.AddInt32(&r.calls, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation, ok := r.reservations[reservationID]
	if !ok {
		return nil, nil
	}
	return &reservation, nil
}

func (r *fakeReservationRepository) FindByFilter(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	atomic.AddInt32(&r.calls, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Reservation, 0)
	for _, reservation := range r.reservations {
		reservation := reservation
		if filter.Matches(&reservation) {
			result = append(result, reservation)
		}
	}
	return result, nil
}

func (r *fakeReservationRepository) MarkCancelled(ctx context.Context, reservationID string, cancelledAt time.Time, cancelledBy string) (bool, error) {
	atomic.AddInt32(&r.calls, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation, ok := r.reservations[reservationID]
	if !ok || !reservation.IsBooked() {
		return false, nil
	}
	reservation.Status = models.ReservationCancelled
	reservation.CancelledAt = &cancelledAt
	reservation.CancelledBy = cancelledBy
	r.reservations[reservationID] = reservation
	return true, nil
}

func (r *fakeReservationRepository) FindUpcoming(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	atomic.AddInt32(&r.calls, 1)
	return nil, nil
}

func (r *fakeReservationRepository) storeCalls() int32 {
	return atomic.LoadInt32(&r.calls)
}

type fakeProfileRepository struct {
	profiles map[string]models.Profile
	calls    int32
}

func newFakeProfileRepository(profiles ...*models.Profile) *fakeProfileRepository {
	repo := &fakeProfileRepository{profiles: make(map[string]models.Profile)}
	for _, p := range profiles {
		repo.profiles[p.UID] = *p
	}
	return repo
}

func (r *fakeProfileRepository) FindByID(ctx context.Context, uid string) (*models.Profile, error) {
	atomic.AddInt32(&r.calls, 1)
	p, ok := r.profiles[uid]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProfileRepository) FindByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	return nil, nil
}

func (r *fakeProfileRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return nil
}

func (r *fakeProfileRepository) FindDoctorListings(ctx context.Context) ([]models.DoctorListing, error) {
	return nil, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.BookingEvent
	fail   bool
}

func (p *fakePublisher) Publish(ctx context.Context, event *models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, *event)
	return nil
}

func (p *fakePublisher) types() []models.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []models.BookingEventType
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type testEnv struct {
	usecase      *reservationUsecase
	reservations *fakeReservationRepository
	profiles     *fakeProfileRepository
	redis        *redistest.FakeRepository
	publisher    *fakePublisher
	clock        *time.Time
}

func newTestEnv(t *testing.T, maxAttempts int) *testEnv {
	t.Helper()

	cfg := &config.InternalConfig{
		App:     config.App{Timezone: "UTC"},
		Booking: config.AppBooking{LockTTLInSeconds: 10, MaxAttemptsPerMinute: maxAttempts},
	}
	clock := time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC)
	env := &testEnv{
		reservations: newFakeReservationRepository(),
		profiles: newFakeProfileRepository(
			models.NewDoctorProfile(models.ProfileBase{UID: "d1", DisplayName: "Dr. One"}, models.DoctorDetails{Specialization: "GP"}),
			models.NewPatientProfile(models.ProfileBase{UID: "p1", DisplayName: "Pat One"}, models.PatientDetails{Age: 30}),
			models.NewPatientProfile(models.ProfileBase{UID: "p2", DisplayName: "Pat Two"}, models.PatientDetails{Age: 41}),
		),
		redis:     redistest.NewFakeRepository(),
		publisher: &fakePublisher{},
		clock:     &clock,
	}
	for i := 3; i <= 20; i++ {
		uid := fmt.Sprintf("p%02d", i)
		env.profiles.profiles[uid] = *models.NewPatientProfile(models.ProfileBase{UID: uid, DisplayName: uid}, models.PatientDetails{})
	}

	logger := zap.NewNop()
	env.usecase = newReservationUsecase(
		env.reservations,
		env.profiles,
		locker.NewLockService(env.redis, logger),
		ratelimiter.NewResourceLimiter(env.redis, logger),
		env.publisher,
		cfg,
		logger,
		func() time.Time { return *env.clock },
	)
	return env
}

func patientSession(uid string) *models.Session {
	return &models.Session{SessionID: "s-" + uid, UID: uid, Role: models.RolePatient}
}

func doctorSession(uid string) *models.Session {
	return &models.Session{SessionID: "s-" + uid, UID: uid, Role: models.RoleDoctor}
}

func bookRequest(patientID string) models.BookRequest {
	return models.BookRequest{DoctorID: "d1", PatientID: patientID, Date: "2024-06-01", Slot: "09:00"}
}

func TestBook_Succeeds(t *testing.T) {
	env := newTestEnv(t, 0)

	reservation, err := env.usecase.Book(context.Background(), patientSession("p1"), bookRequest("p1"))
	require.NoError(t, err)

	assert.Equal(t, "d1_2024-06-01_09-00", reservation.ID)
	assert.Equal(t, models.ReservationBooked, reservation.Status)
	assert.Equal(t, "Dr. One", reservation.DoctorName)
	assert.Equal(t, "Pat One", reservation.PatientName)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), reservation.AppointmentTs)
	assert.False(t, reservation.CreatedAt.IsZero())
	assert.Equal(t, []models.BookingEventType{models.BookingCreated}, env.publisher.types())
	assert.False(t, env.redis.Has("lock:appointment:d1_2024-06-01_09-00"), "lock must be released")
}

func TestBook_ConcurrentAttemptsExactlyOneWins(t *testing.T) {
	env := newTestEnv(t, 0)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		successes int32
		conflicts int32
		others    int32
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			uid := fmt.Sprintf("p%02d", i+3)
			_, err := env.usecase.Book(context.Background(), patientSession(uid), bookRequest(uid))
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case exceptions.Is(err, exceptions.KindConflict):
				atomic.AddInt32(&conflicts, 1)
			default:
				atomic.AddInt32(&others, 1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes)
	assert.Equal(t, int32(attempts-1), conflicts)
	assert.Zero(t, others)
	assert.Len(t, env.reservations.reservations, 1)
}

func TestBook_PatientForOtherPatientIsUnauthorizedWithoutStoreAccess(t *testing.T) {
	env := newTestEnv(t, 5)

	_, err := env.usecase.Book(context.Background(), patientSession("p1"), bookRequest("p2"))

	require.Error(t, err)
	assert.True(t, exceptions.Is(err, exceptions.KindUnauthorized))
	assert.Zero(t, env.reservations.storeCalls())
	assert.Zero(t, atomic.LoadInt32(&env.profiles.calls))
}

func TestBook_InvalidInputNeverReachesStore(t *testing.T) {
	env := newTestEnv(t, 5)

	tests := []struct {
		name    string
		request models.BookRequest
	}{
		{"Lunch Slot", models.BookRequest{DoctorID: "d1", PatientID: "p1", Date: "2024-06-01", Slot: "12:30"}},
		{"Bad Date", models.BookRequest{DoctorID: "d1", PatientID: "p1", Date: "01/06/2024", Slot: "09:00"}},
		{"Missing Doctor", models.BookRequest{PatientID: "p1", Date: "2024-06-01", Slot: "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.usecase.Book(context.Background(), patientSession("p1"), tt.request)
			require.Error(t, err)
			assert.True(t, exceptions.Is(err, exceptions.KindInvalid))
		})
	}
	assert.Zero(t, env.reservations.storeCalls())
}

func TestBook_UnknownParticipants(t *testing.T) {
	env := newTestEnv(t, 0)

	_, err := env.usecase.Book(context.Background(), doctorSession("d1"), models.BookRequest{DoctorID: "p1", PatientID: "p2", Date: "2024-06-01", Slot: "09:00"})
	assert.True(t, exceptions.Is(err, exceptions.KindInvalid))

	_, err = env.usecase.Book(context.Background(), doctorSession("d1"), models.BookRequest{DoctorID: "d1", PatientID: "ghost", Date: "2024-06-01", Slot: "09:00"})
	assert.True(t, exceptions.Is(err, exceptions.KindInvalid))
	assert.Zero(t, env.reservations.storeCalls())
}

func TestBook_SlotLockedByAnotherRequest(t *testing.T) {
	env := newTestEnv(t, 0)
	_, err := env.redis.TrySetNX(context.Background(), "lock:appointment:d1_2024-06-01_09-00", "someone-else", time.Minute)
	require.NoError(t, err)

	_, err = env.usecase.Book(context.Background(), patientSession("p1"), bookRequest("p1"))

	assert.True(t, exceptions.Is(err, exceptions.KindConflict))
	assert.Zero(t, env.reservations.storeCalls())
}

func TestBook_RedisDownIsUnavailable(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
	}{
		{"Lock Store Error", 0},
		{"Rate Limit Store Error", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.maxAttempts)
			env.redis.FailAll = true

			reservation, err := env.usecase.Book(context.Background(), patientSession("p1"), bookRequest("p1"))

			require.Error(t, err)
			assert.Nil(t, reservation)
			assert.True(t, exceptions.Is(err, exceptions.KindUnavailable))
			assert.Zero(t, env.reservations.storeCalls())
			assert.Empty(t, env.reservations.reservations)
			assert.Empty(t, env.publisher.types())
		})
	}
}

func TestBook_RateLimited(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx := context.Background()

	for _, slot := range []string{"09:00", "09:30"} {
		_, err := env.usecase.Book(ctx, patientSession("p1"), models.BookRequest{DoctorID: "d1", PatientID: "p1", Date: "2024-06-01", Slot: slot})
		require.NoError(t, err)
	}

	_, err := env.usecase.Book(ctx, patientSession("p1"), models.BookRequest{DoctorID: "d1", PatientID: "p1", Date: "2024-06-01", Slot: "10:00"})
	assert.True(t, exceptions.Is(err, exceptions.KindTooManyRequests))

	// the clock sits on a window boundary, the next window opens in 60s
	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, 61, customErr.RetryAfterSecs)
}

func TestBook_PublishFailureDoesNotFailBooking(t *testing.T) {
	env := newTestEnv(t, 0)
	env.publisher.fail = true

	_, err := env.usecase.Book(context.Background(), patientSession("p1"), bookRequest("p1"))

	assert.NoError(t, err)
}

func TestBookAndCancel_KeyIsNotRecycled(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	first, err := env.usecase.Book(ctx, patientSession("p1"), bookRequest("p1"))
	require.NoError(t, err)

	_, err = env.usecase.Book(ctx, patientSession("p2"), bookRequest("p2"))
	assert.True(t, exceptions.Is(err, exceptions.KindConflict))

	cancelled, err := env.usecase.Cancel(ctx, patientSession("p1"), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	assert.Equal(t, "p1", cancelled.CancelledBy)

	_, err = env.usecase.Book(ctx, patientSession("p2"), bookRequest("p2"))
	assert.True(t, exceptions.Is(err, exceptions.KindConflict))

	_, err = env.usecase.Cancel(ctx, patientSession("p1"), first.ID)
	assert.True(t, exceptions.Is(err, exceptions.KindInvalid))

	assert.Equal(t, []models.BookingEventType{models.BookingCreated, models.BookingCancelled}, env.publisher.types())
}

func TestCancel_NoticeBoundary(t *testing.T) {
	appointment := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		wantKind exceptions.Kind
		wantErr  bool
	}{
		{"Just Before Boundary", appointment.Add(-time.Hour - time.Second), "", false},
		{"Exactly At Boundary", appointment.Add(-time.Hour), exceptions.KindTooLate, true},
		{"After Appointment", appointment.Add(time.Minute), exceptions.KindTooLate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 0)
			reservation, err := env.usecase.Book(context.Background(), patientSession("p1"), bookRequest("p1"))
			require.NoError(t, err)

			*env.clock = tt.now
			_, err = env.usecase.Cancel(context.Background(), doctorSession("d1"), reservation.ID)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, exceptions.Is(err, tt.wantKind))
			stored, _ := env.reservations.FindByID(context.Background(), reservation.ID)
			assert.Equal(t, models.ReservationBooked, stored.Status)
		})
	}
}

func TestCancel_AccessRules(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	reservation, err := env.usecase.Book(ctx, patientSession("p1"), bookRequest("p1"))
	require.NoError(t, err)

	_, err = env.usecase.Cancel(ctx, patientSession("p2"), reservation.ID)
	assert.True(t, exceptions.Is(err, exceptions.KindUnauthorized))

	_, err = env.usecase.Cancel(ctx, patientSession("p1"), "d1_2024-06-01_14-00")
	assert.True(t, exceptions.Is(err, exceptions.KindNotFound))

	_, err = env.usecase.FindByID(ctx, doctorSession("d2"), reservation.ID)
	assert.True(t, exceptions.Is(err, exceptions.KindUnauthorized))

	found, err := env.usecase.FindByID(ctx, doctorSession("d1"), reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.ID, found.ID)
}

func TestAvailability(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	_, err := env.usecase.Book(ctx, patientSession("p1"), bookRequest("p1"))
	require.NoError(t, err)
	second, err := env.usecase.Book(ctx, patientSession("p2"), models.BookRequest{DoctorID: "d1", PatientID: "p2", Date: "2024-06-01", Slot: "14:30"})
	require.NoError(t, err)
	_, err = env.usecase.Cancel(ctx, patientSession("p2"), second.ID)
	require.NoError(t, err)

	slots, err := env.usecase.Availability(ctx, "d1", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, slots, 9)

	taken := map[string]bool{}
	for _, s := range slots {
		taken[s.Slot] = s.Taken
	}
	assert.True(t, taken["09:00"])
	assert.False(t, taken["14:30"], "cancelled reservations free the slot in the view")
	assert.False(t, taken["15:00"])

	_, err = env.usecase.Availability(ctx, "d1", "June 1st")
	assert.True(t, exceptions.Is(err, exceptions.KindInvalid))
}
