package identity

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/redis/redistest"
	"docbook-service/internal/app/services/shared/session"
	"docbook-service/internal/pkg/exceptions"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	profiles map[string]models.Profile
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts: make(map[string]models.Account),
		profiles: make(map[string]models.Profile),
	}
}

func (s *fakeAccountStore) CreateAccount(ctx context.Context, account *models.Account, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.accounts[account.Email]; taken {
		return exceptions.ErrEmailAlreadyExist(nil)
	}
	s.accounts[account.Email] = *account
	s.profiles[profile.UID] = *profile
	return nil
}

func (s *fakeAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[email]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (s *fakeAccountStore) FindByID(ctx context.Context, uid string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[uid]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (s *fakeAccountStore) FindByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	return nil, nil
}

func (s *fakeAccountStore) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return nil
}

func (s *fakeAccountStore) FindDoctorListings(ctx context.Context) ([]models.DoctorListing, error) {
	return nil, nil
}

func newTestUsecase() (contracts.IdentityUsecase, *fakeAccountStore) {
	store := newFakeAccountStore()
	internalConfig := &config.InternalConfig{
		JWT: config.AppJWT{Secret: "test-secret", ExpTimeInHour: 1},
	}
	sessions := session.NewSessionService(redistest.NewFakeRepository())
	return NewIdentityUsecase(store, store, sessions, internalConfig, zap.NewNop()), store
}

func patientInput(email string) *models.CreateAccountInput {
	return &models.CreateAccountInput{
		Email:       email,
		Password:    "Secret#123",
		DisplayName: "Peter",
		Role:        models.RolePatient,
		Patient:     &models.PatientDetails{Gender: "male", Age: 30},
	}
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Patient Account", func(t *testing.T) {
		uc, store := newTestUsecase()

		var changes []models.IdentityChange
		uc.OnIdentityChange(func(change models.IdentityChange) { changes = append(changes, change) })

		identity, err := uc.CreateAccount(ctx, patientInput("peter@mail.com"))
		require.NoError(t, err)
		assert.Equal(t, models.RolePatient, identity.Role)
		assert.NotEmpty(t, identity.UID)

		profile, _ := store.FindByID(ctx, identity.UID)
		require.NotNil(t, profile)
		assert.True(t, profile.IsPatient())
		assert.Nil(t, profile.Doctor)

		account, _ := store.FindByEmail(ctx, "peter@mail.com")
		assert.NotEqual(t, "Secret#123", account.PasswordHash, "password must be hashed")

		require.Len(t, changes, 1)
		assert.Equal(t, models.IdentityCreated, changes[0].Type)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		uc, _ := newTestUsecase()
		_, err := uc.CreateAccount(ctx, patientInput("peter@mail.com"))
		require.NoError(t, err)

		_, err = uc.CreateAccount(ctx, patientInput("peter@mail.com"))
		assert.True(t, exceptions.Is(err, exceptions.KindConflict))
	})

	t.Run("Weak Password Is Invalid", func(t *testing.T) {
		uc, _ := newTestUsecase()
		input := patientInput("peter@mail.com")
		input.Password = "short"

		_, err := uc.CreateAccount(ctx, input)
		assert.True(t, exceptions.Is(err, exceptions.KindInvalid))
	})

	t.Run("Doctor Role Needs Doctor Details", func(t *testing.T) {
		uc, _ := newTestUsecase()
		input := patientInput("doc@mail.com")
		input.Role = models.RoleDoctor

		_, err := uc.CreateAccount(ctx, input)
		assert.True(t, exceptions.Is(err, exceptions.KindInvalid))
	})
}

func TestAuthenticateLifecycle(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUsecase()
	_, err := uc.CreateAccount(ctx, patientInput("peter@mail.com"))
	require.NoError(t, err)

	t.Run("Wrong Password", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, "peter@mail.com", "Wrong#123")
		assert.True(t, exceptions.Is(err, exceptions.KindUnauthenticated))
	})

	t.Run("Unknown Email", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, "nobody@mail.com", "Secret#123")
		assert.True(t, exceptions.Is(err, exceptions.KindUnauthenticated))
	})

	t.Run("Sign In, Resolve, Sign Out", func(t *testing.T) {
		var signedOut []models.IdentityChange
		unsubscribe := uc.OnIdentityChange(func(change models.IdentityChange) {
			if change.Type == models.IdentitySignedOut {
				signedOut = append(signedOut, change)
			}
		})
		defer unsubscribe()

		result, err := uc.Authenticate(ctx, "peter@mail.com", "Secret#123")
		require.NoError(t, err)
		require.NotEmpty(t, result.Token)

		current, err := uc.CurrentIdentity(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.Session.UID, current.UID)
		assert.Equal(t, models.RolePatient, current.Role)

		require.NoError(t, uc.Deauthenticate(ctx, current))
		require.Len(t, signedOut, 1)
		assert.Equal(t, current.SessionID, signedOut[0].SessionID)

		_, err = uc.CurrentIdentity(ctx, result.Token)
		assert.True(t, exceptions.Is(err, exceptions.KindUnauthenticated), "token must not resolve after sign-out")
	})

	t.Run("Missing Token", func(t *testing.T) {
		_, err := uc.CurrentIdentity(ctx, "")
		assert.True(t, exceptions.Is(err, exceptions.KindUnauthenticated))
	})
}
