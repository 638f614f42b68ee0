package identity

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type identityUsecase struct {
	AccountRepository contracts.AccountRepository
	ProfileRepository contracts.ProfileRepository
	SessionService    contracts.SessionService
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger
	now               func() time.Time

	mu        sync.RWMutex
	nextID    uint64
	observers map[uint64]func(models.IdentityChange)
}

func NewIdentityUsecase(
	accountRepository contracts.AccountRepository,
	profileRepository contracts.ProfileRepository,
	sessionService contracts.SessionService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.IdentityUsecase {
	return &identityUsecase{
		AccountRepository: accountRepository,
		ProfileRepository: profileRepository,
		SessionService:    sessionService,
		InternalConfig:    internalConfig,
		Log:               logger,
		now:               time.Now,
		observers:         make(map[uint64]func(models.IdentityChange)),
	}
}

func (uc *identityUsecase) CreateAccount(ctx context.Context, input *models.CreateAccountInput) (*models.Identity, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("identityUsecase.CreateAccount called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEmailKey, input.Email),
		zap.String(constvars.LoggingRoleKey, string(input.Role)),
	)

	if err := utils.ValidateStruct(input); err != nil {
		uc.Log.Error("identityUsecase.CreateAccount invalid input",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrInputValidation(err)
	}
	if err := checkVariant(input); err != nil {
		return nil, exceptions.ErrInvalidRoleType(err)
	}

	existing, err := uc.AccountRepository.FindByEmail(ctx, input.Email)
	if err != nil {
		uc.Log.Error("identityUsecase.CreateAccount error calling AccountRepository.FindByEmail",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if existing != nil {
		return nil, exceptions.ErrEmailAlreadyExist(nil)
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, exceptions.ErrHashPassword(err)
	}

	now := uc.now()
	uid := utils.GenerateUID()
	account := &models.Account{
		UID:          uid,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
	}
	base := models.ProfileBase{
		UID:         uid,
		DisplayName: input.DisplayName,
		Email:       input.Email,
		TimeModel:   models.TimeModel{CreatedAt: now, UpdatedAt: now},
	}

	var profile *models.Profile
	if input.Role == models.RoleDoctor {
		profile = models.NewDoctorProfile(base, *input.Doctor)
	} else {
		profile = models.NewPatientProfile(base, *input.Patient)
	}

	if err := uc.AccountRepository.CreateAccount(ctx, account, profile); err != nil {
		uc.Log.Error("identityUsecase.CreateAccount error calling AccountRepository.CreateAccount",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.notify(models.IdentityChange{Type: models.IdentityCreated, UID: uid, Role: profile.Role, At: now})

	uc.Log.Info("identityUsecase.CreateAccount succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, uid),
	)
	return &models.Identity{
		UID:         uid,
		Email:       account.Email,
		Role:        profile.Role,
		DisplayName: profile.DisplayName,
	}, nil
}

func checkVariant(input *models.CreateAccountInput) error {
	switch input.Role {
	case models.RoleDoctor:
		if input.Doctor == nil || input.Patient != nil {
			return errors.New("doctor account requires doctor details only")
		}
	case models.RolePatient:
		if input.Patient == nil || input.Doctor != nil {
			return errors.New("patient account requires patient details only")
		}
	default:
		return errors.New("unknown role")
	}
	return nil
}

func (uc *identityUsecase) Authenticate(ctx context.Context, email, password string) (*models.AuthResult, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("identityUsecase.Authenticate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEmailKey, email),
	)

	account, err := uc.AccountRepository.FindByEmail(ctx, email)
	if err != nil {
		uc.Log.Error("identityUsecase.Authenticate error calling AccountRepository.FindByEmail",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if account == nil || !utils.CheckPasswordHash(password, account.PasswordHash) {
		utils.LogSecurityEvent(uc.Log, "failed_sign_in", requestID, zap.String(constvars.LoggingEmailKey, email))
		return nil, exceptions.ErrInvalidEmailOrPassword(nil)
	}

	profile, err := uc.ProfileRepository.FindByID(ctx, account.UID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, exceptions.ErrUserNotExist(nil)
	}

	session := &models.Session{
		SessionID:   utils.GenerateSessionID(),
		UID:         account.UID,
		Email:       account.Email,
		Role:        profile.Role,
		DisplayName: profile.DisplayName,
		CreatedAt:   uc.now(),
	}
	ttl := time.Duration(uc.InternalConfig.JWT.ExpTimeInHour) * time.Hour
	if err := uc.SessionService.CreateSession(ctx, session, ttl); err != nil {
		uc.Log.Error("identityUsecase.Authenticate error calling SessionService.CreateSession",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	token, err := utils.GenerateSessionJWT(session.SessionID, uc.InternalConfig.JWT.Secret, uc.InternalConfig.JWT.ExpTimeInHour)
	if err != nil {
		return nil, err
	}

	uc.notify(models.IdentityChange{
		Type:      models.IdentitySignedIn,
		UID:       session.UID,
		SessionID: session.SessionID,
		Role:      session.Role,
		At:        session.CreatedAt,
	})

	uc.Log.Info("identityUsecase.Authenticate succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
		zap.String(constvars.LoggingSessionIDKey, session.SessionID),
	)
	return &models.AuthResult{Session: session, Token: token}, nil
}

func (uc *identityUsecase) Deauthenticate(ctx context.Context, session *models.Session) error {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("identityUsecase.Deauthenticate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, session.SessionID),
	)

	if err := uc.SessionService.DeleteSession(ctx, session.SessionID); err != nil {
		uc.Log.Error("identityUsecase.Deauthenticate error calling SessionService.DeleteSession",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}

	uc.notify(models.IdentityChange{
		Type:      models.IdentitySignedOut,
		UID:       session.UID,
		SessionID: session.SessionID,
		Role:      session.Role,
		At:        uc.now(),
	})

	uc.Log.Info("identityUsecase.Deauthenticate succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	return nil
}

func (uc *identityUsecase) CurrentIdentity(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, exceptions.ErrTokenMissing(nil)
	}

	sessionID, err := utils.ParseJWT(token, uc.InternalConfig.JWT.Secret)
	if err != nil {
		return nil, err
	}

	return uc.SessionService.GetSession(ctx, sessionID)
}

// OnIdentityChange registers observer, it is called synchronously after each
// account creation, sign-in and sign-out.
func (uc *identityUsecase) OnIdentityChange(observer func(models.IdentityChange)) func() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.nextID++
	id := uc.nextID
	uc.observers[id] = observer

	return func() {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		delete(uc.observers, id)
	}
}

func (uc *identityUsecase) notify(change models.IdentityChange) {
	uc.mu.RLock()
	observers := make([]func(models.IdentityChange), 0, len(uc.observers))
	for _, observer := range uc.observers {
		observers = append(observers, observer)
	}
	uc.mu.RUnlock()

	for _, observer := range observers {
		observer(change)
	}
}
