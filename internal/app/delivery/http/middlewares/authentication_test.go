package middlewares

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
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
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockIdentityUsecase) CurrentIdentity(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockIdentityUsecase) OnIdentityChange(observer func(models.IdentityChange)) func() {
	return func() {}
}

func newTestMiddlewares(identityUsecase *MockIdentityUsecase) *Middlewares {
	internalConfig := &config.InternalConfig{
		App: config.App{MaxRequests: 2, MaxTimeRequestsPerSeconds: 60, RequestBodyLimitInMegabyte: 1},
	}
	return NewMiddlewares(zap.NewNop(), identityUsecase, internalConfig)
}

func TestAuthenticate(t *testing.T) {
	session := &models.Session{SessionID: "s1", UID: "p1", Role: models.RolePatient}

	tests := []struct {
		name       string
		header     string
		setup      func(m *MockIdentityUsecase)
		wantStatus int
	}{
		{
			name:       "Missing Header",
			header:     "",
			setup:      func(m *MockIdentityUsecase) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Wrong Scheme",
			header:     "Basic abc",
			setup:      func(m *MockIdentityUsecase) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Expired Session",
			header: "Bearer stale-token",
			setup: func(m *MockIdentityUsecase) {
				m.On("CurrentIdentity", mock.Anything, "stale-token").Return(nil, exceptions.ErrSessionNotFound(nil))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Valid Token",
			header: "Bearer good-token",
			setup: func(m *MockIdentityUsecase) {
				m.On("CurrentIdentity", mock.Anything, "good-token").Return(session, nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identityUsecase := new(MockIdentityUsecase)
			tt.setup(identityUsecase)
			m := newTestMiddlewares(identityUsecase)

			var seen *models.Session
			handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = r.Context().Value(constvars.CONTEXT_SESSION_KEY).(*models.Session)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set(constvars.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, session, seen)
			} else {
				assert.Nil(t, seen)
			}
			identityUsecase.AssertExpectations(t)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddlewares(new(MockIdentityUsecase))

	var seen string
	handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	}))

	t.Run("Client Supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderXRequestID, "client-id")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "client-id", seen)
		assert.Equal(t, "client-id", rec.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("Generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(constvars.HeaderXRequestID))
	})
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	m := newTestMiddlewares(new(MockIdentityUsecase))
	handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimit(t *testing.T) {
	m := newTestMiddlewares(new(MockIdentityUsecase))
	handler := m.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLoggingKeepsFlusher(t *testing.T) {
	m := newTestMiddlewares(new(MockIdentityUsecase))

	var flushable bool
	handler := m.Logging(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, flushable = w.(http.Flusher)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, flushable)
}
