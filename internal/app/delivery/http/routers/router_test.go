package routers

import (
	"bytes"
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/delivery/http/controllers"
	"docbook-service/internal/app/delivery/http/middlewares"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockIdentityUsecase struct {
	mock.Mock
}

func (m *MockIdentityUsecase) CreateAccount(ctx context.Context, input *models.CreateAccountInput) (*models.Identity, error) {
	args := m.Called(ctx, input)
	identity, _ := args.Get(0).(*models.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityUsecase) Authenticate(ctx context.Context, email, password string) (*models.AuthResult, error) {
	args := m.Called(ctx, email, password)
	result, _ := args.Get(0).(*models.AuthResult)
	return result, args.Error(1)
}

func (m *MockIdentityUsecase) Deauthenticate(ctx context.Context, session *models.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockIdentityUsecase) CurrentIdentity(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockIdentityUsecase) OnIdentityChange(observer func(models.IdentityChange)) func() {
	return func() {}
}

type MockReservationUsecase struct {
	mock.Mock
}

func (m *MockReservationUsecase) Book(ctx context.Context, session *models.Session, request models.BookRequest) (*models.Reservation, error) {
	args := m.Called(ctx, session, request)
	reservation, _ := args.Get(0).(*models.Reservation)
	return reservation, args.Error(1)
}

func (m *MockReservationUsecase) Cancel(ctx context.Context, session *models.Session, reservationID string) (*models.Reservation, error) {
	args := m.Called(ctx, session, reservationID)
	reservation, _ := args.Get(0).(*models.Reservation)
	return reservation, args.Error(1)
}

func (m *MockReservationUsecase) FindByID(ctx context.Context, session *models.Session, reservationID string) (*models.Reservation, error) {
	args := m.Called(ctx, session, reservationID)
	reservation, _ := args.Get(0).(*models.Reservation)
	return reservation, args.Error(1)
}

func (m *MockReservationUsecase) Availability(ctx context.Context, doctorID, date string) ([]models.SlotAvailability, error) {
	args := m.Called(ctx, doctorID, date)
	slots, _ := args.Get(0).([]models.SlotAvailability)
	return slots, args.Error(1)
}

const testToken = "token-p1"

var testSession = &models.Session{SessionID: "s1", UID: "p1", Role: models.RolePatient, Email: "p1@mail.com"}

func newTestRouter(identityUsecase *MockIdentityUsecase, reservationUsecase *MockReservationUsecase) *chi.Mux {
	logger := zap.NewNop()
	internalConfig := &config.InternalConfig{
		App: config.App{
			EndpointPrefix:             "/api",
			Version:                    "v1",
			MaxRequests:                1000,
			MaxTimeRequestsPerSeconds:  1,
			RequestBodyLimitInMegabyte: 1,
			RequestTimeoutInSeconds:    5,
		},
	}
	identityUsecase.On("CurrentIdentity", mock.Anything, testToken).Return(testSession, nil).Maybe()

	router := chi.NewRouter()
	SetupRoutes(
		router,
		internalConfig,
		middlewares.NewMiddlewares(logger, identityUsecase, internalConfig),
		controllers.NewAuthController(logger, identityUsecase, internalConfig),
		controllers.NewUserController(logger, nil, nil, internalConfig),
		controllers.NewDoctorController(logger, nil, reservationUsecase, internalConfig),
		controllers.NewPatientController(logger, nil, internalConfig),
		controllers.NewAppointmentController(logger, reservationUsecase, nil, internalConfig),
	)
	return router
}

func doRequest(router http.Handler, method, path string, body interface{}, authenticated bool) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&payload).Encode(body)
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	if authenticated {
		req.Header.Set(constvars.HeaderAuthorization, constvars.BearerPrefix+testToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRoutes(t *testing.T) {
	identityUsecase := new(MockIdentityUsecase)
	router := newTestRouter(identityUsecase, new(MockReservationUsecase))

	t.Run("Login", func(t *testing.T) {
		identityUsecase.On("Authenticate", mock.Anything, "p1@mail.com", "Secret#123").
			Return(&models.AuthResult{Session: testSession, Token: testToken}, nil).Once()

		rec := doRequest(router, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    " P1@mail.com ",
			"password": "Secret#123",
		}, false)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Success bool `json:"success"`
			Data    struct {
				Token string `json:"token"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, testToken, body.Data.Token)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		identityUsecase.On("Authenticate", mock.Anything, "p1@mail.com", "Wrong#123").
			Return(nil, exceptions.ErrInvalidEmailOrPassword(nil)).Once()

		rec := doRequest(router, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "p1@mail.com",
			"password": "Wrong#123",
		}, false)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Me Requires Token", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/auth/me", nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Me", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/auth/me", nil, true)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"uid":"p1"`)
	})
}

func TestAppointmentRoutes(t *testing.T) {
	reservationUsecase := new(MockReservationUsecase)
	router := newTestRouter(new(MockIdentityUsecase), reservationUsecase)

	booked := &models.Reservation{
		ID:            "d1_2024-06-01_09-00",
		DoctorID:      "d1",
		PatientID:     "p1",
		Date:          "2024-06-01",
		Slot:          "09:00",
		Status:        models.ReservationBooked,
		AppointmentTs: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	request := models.BookRequest{DoctorID: "d1", PatientID: "p1", Date: "2024-06-01", Slot: "09:00"}

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		setup      func()
		wantStatus int
	}{
		{
			name:       "Unauthenticated",
			method:     http.MethodPost,
			path:       "/api/v1/appointments",
			body:       request,
			setup:      func() {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Book",
			method: http.MethodPost,
			path:   "/api/v1/appointments",
			body:   request,
			setup: func() {
				reservationUsecase.On("Book", mock.Anything, testSession, request).Return(booked, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:   "Book Conflict",
			method: http.MethodPost,
			path:   "/api/v1/appointments",
			body:   request,
			setup: func() {
				reservationUsecase.On("Book", mock.Anything, testSession, request).Return(nil, exceptions.ErrSlotAlreadyBooked(nil)).Once()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "Find By ID",
			method: http.MethodGet,
			path:   "/api/v1/appointments/d1_2024-06-01_09-00",
			setup: func() {
				reservationUsecase.On("FindByID", mock.Anything, testSession, "d1_2024-06-01_09-00").Return(booked, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "Cancel Too Late",
			method: http.MethodPost,
			path:   "/api/v1/appointments/d1_2024-06-01_09-00/cancel",
			setup: func() {
				reservationUsecase.On("Cancel", mock.Anything, testSession, "d1_2024-06-01_09-00").Return(nil, exceptions.ErrCancelTooLate(nil)).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "Stream Rejects Bad Query",
			method:     http.MethodGet,
			path:       "/api/v1/appointments/stream?doctorId=d1&date=tomorrow",
			setup:      func() {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Availability Rejects Bad Date",
			method:     http.MethodGet,
			path:       "/api/v1/doctors/d1/availability?date=tomorrow",
			setup:      func() {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "Availability",
			method: http.MethodGet,
			path:   "/api/v1/doctors/d1/availability?date=2024-06-01",
			setup: func() {
				reservationUsecase.On("Availability", mock.Anything, "d1", "2024-06-01").
					Return([]models.SlotAvailability{{Slot: "09:00", Taken: true}}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			rec := doRequest(router, tt.method, tt.path, tt.body, tt.name != "Unauthenticated")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
	reservationUsecase.AssertExpectations(t)
}

func preflight(handler http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	t.Run("Default Origins Never Allow Credentials", func(t *testing.T) {
		router := newTestRouter(new(MockIdentityUsecase), new(MockReservationUsecase))

		rec := preflight(router, "https://anywhere.example")
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	tests := []struct {
		name            string
		origins         []string
		wantOrigins     []string
		wantCredentials bool
	}{
		{"No Origins Configured", nil, []string{"*"}, false},
		{"Wildcard Among Origins", []string{"https://app.example", "*"}, []string{"*"}, false},
		{"Explicit Origins", []string{"https://app.example"}, []string{"https://app.example"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := corsOptions(tt.origins)
			assert.Equal(t, tt.wantOrigins, options.AllowedOrigins)
			assert.Equal(t, tt.wantCredentials, options.AllowCredentials)
		})
	}

	t.Run("Explicit Origin Is Echoed With Credentials", func(t *testing.T) {
		handler := cors.Handler(corsOptions([]string{"https://app.example"}))(http.NotFoundHandler())

		allowed := preflight(handler, "https://app.example")
		assert.Equal(t, "https://app.example", allowed.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", allowed.Header().Get("Access-Control-Allow-Credentials"))

		foreign := preflight(handler, "https://evil.example")
		assert.Empty(t, foreign.Header().Get("Access-Control-Allow-Origin"))
	})
}
