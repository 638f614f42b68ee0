package profiles

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/subscription"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/dto/requests"
	"docbook-service/internal/pkg/dto/responses"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type profileUsecase struct {
	ProfileRepository contracts.ProfileRepository
	ChangeFeed        contracts.ProfileChangeFeed
	MinioStorage      contracts.Storage
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger
	subscriptions     *subscription.Registry
	now               func() time.Time
}

func NewProfileUsecase(
	profileRepository contracts.ProfileRepository,
	changeFeed contracts.ProfileChangeFeed,
	minioStorage contracts.Storage,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ProfileUsecase {
	return &profileUsecase{
		ProfileRepository: profileRepository,
		ChangeFeed:        changeFeed,
		MinioStorage:      minioStorage,
		InternalConfig:    internalConfig,
		Log:               logger,
		subscriptions:     subscription.NewRegistry(),
		now:               time.Now,
	}
}

func (uc *profileUsecase) GetProfile(ctx context.Context, session *models.Session) (*responses.UserProfile, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("profileUsecase.GetProfile called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
	)

	profile, err := uc.GetProfileByID(ctx, session.UID)
	if err != nil {
		uc.Log.Error("profileUsecase.GetProfile error calling GetProfileByID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("profileUsecase.GetProfile succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	return utils.BuildUserProfileResponse(profile, uc.pictureURL(ctx, profile.ProfilePicture)), nil
}

func (uc *profileUsecase) GetProfileByID(ctx context.Context, uid string) (*models.Profile, error) {
	profile, err := uc.ProfileRepository.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, exceptions.ErrUserNotExist(nil)
	}
	return profile, nil
}

func (uc *profileUsecase) UpdateProfile(ctx context.Context, session *models.Session, request *requests.UpdateProfile) (*responses.UserProfile, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("profileUsecase.UpdateProfile called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
	)

	profile, err := uc.GetProfileByID(ctx, session.UID)
	if err != nil {
		uc.Log.Error("profileUsecase.UpdateProfile error calling GetProfileByID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	applyProfileUpdate(profile, request)

	if len(request.ProfilePictureData) > 0 {
		objectName, err := uc.uploadProfilePicture(ctx, profile.UID, request)
		if err != nil {
			uc.Log.Error("profileUsecase.UpdateProfile error uploading profile picture",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, err
		}
		profile.ProfilePicture = objectName
	}
	profile.UpdatedAt = uc.now()

	if err := uc.ProfileRepository.UpdateProfile(ctx, profile); err != nil {
		uc.Log.Error("profileUsecase.UpdateProfile error calling ProfileRepository.UpdateProfile",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("profileUsecase.UpdateProfile succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
	)
	return utils.BuildUserProfileResponse(profile, uc.pictureURL(ctx, profile.ProfilePicture)), nil
}

// applyProfileUpdate copies the set fields, only the variant matching the
// profile's role is touched.
func applyProfileUpdate(profile *models.Profile, request *requests.UpdateProfile) {
	if request.DisplayName != nil {
		profile.DisplayName = *request.DisplayName
	}

	switch {
	case profile.IsPatient():
		if request.Phone != nil {
			profile.Patient.Phone = *request.Phone
		}
		if request.Address != nil {
			profile.Patient.Address = *request.Address
		}
		if request.Gender != nil {
			profile.Patient.Gender = *request.Gender
		}
		if request.Age != nil {
			profile.Patient.Age = *request.Age
		}
	case profile.IsDoctor():
		if request.Phone != nil {
			profile.Doctor.Phone = *request.Phone
		}
		if request.Specialization != nil {
			profile.Doctor.Specialization = *request.Specialization
		}
		if request.Qualification != nil {
			profile.Doctor.Qualification = *request.Qualification
		}
		if request.YearsExperience != nil {
			profile.Doctor.YearsExperience = *request.YearsExperience
		}
		if request.Clinic != nil {
			profile.Doctor.Clinic = *request.Clinic
		}
	}
}

func (uc *profileUsecase) uploadProfilePicture(ctx context.Context, uid string, request *requests.UpdateProfile) (string, error) {
	fileName := utils.GenerateFileName(constvars.ProfilePictureObjectPrefix, uid, request.ProfilePictureExtension)
	return uc.MinioStorage.UploadBase64Image(
		ctx,
		request.ProfilePictureData,
		uc.InternalConfig.Minio.BucketName,
		fileName,
		request.ProfilePictureExtension,
	)
}

// pictureURL presigns objectName, a failure only drops the link.
func (uc *profileUsecase) pictureURL(ctx context.Context, objectName string) string {
	if objectName == "" || uc.MinioStorage == nil {
		return ""
	}
	expiry := time.Duration(uc.InternalConfig.Minio.PreSignedUrlObjectExpiryInHours) * time.Hour
	url, err := uc.MinioStorage.GetObjectUrlWithExpiryTime(ctx, uc.InternalConfig.Minio.BucketName, objectName, expiry)
	if err != nil {
		uc.Log.Warn("profileUsecase.pictureURL presign failed",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingObjectKey, objectName),
			zap.Error(err),
		)
		return ""
	}
	return url
}

func (uc *profileUsecase) ListDoctors(ctx context.Context) ([]responses.Doctor, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("profileUsecase.ListDoctors called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	listings, err := uc.ProfileRepository.FindDoctorListings(ctx)
	if err != nil {
		uc.Log.Error("profileUsecase.ListDoctors error calling ProfileRepository.FindDoctorListings",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	result := make([]responses.Doctor, 0, len(listings))
	for i := range listings {
		result = append(result, utils.BuildDoctorResponse(&listings[i], uc.pictureURL(ctx, listings[i].ProfilePicture)))
	}

	uc.Log.Info("profileUsecase.ListDoctors succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseCountKey, len(result)),
	)
	return result, nil
}

// ListPatients returns every patient to a doctor and only themselves to a
// patient.
func (uc *profileUsecase) ListPatients(ctx context.Context, session *models.Session) ([]responses.UserProfile, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("profileUsecase.ListPatients called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRoleKey, string(session.Role)),
	)

	var patients []models.Profile
	switch {
	case session.IsDoctor():
		found, err := uc.ProfileRepository.FindByRole(ctx, models.RolePatient)
		if err != nil {
			uc.Log.Error("profileUsecase.ListPatients error calling ProfileRepository.FindByRole",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, err
		}
		patients = found
	case session.IsPatient():
		self, err := uc.GetProfileByID(ctx, session.UID)
		if err != nil {
			return nil, err
		}
		patients = []models.Profile{*self}
	default:
		return nil, exceptions.ErrRoleNotAllowed(nil)
	}

	result := make([]responses.UserProfile, 0, len(patients))
	for i := range patients {
		result = append(result, *utils.BuildUserProfileResponse(&patients[i], uc.pictureURL(ctx, patients[i].ProfilePicture)))
	}

	uc.Log.Info("profileUsecase.ListPatients succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseCountKey, len(result)),
	)
	return result, nil
}

// SubscribeProfile streams the caller's own profile, closed on sign-out.
func (uc *profileUsecase) SubscribeProfile(ctx context.Context, session *models.Session) (*subscription.Subscription[*responses.UserProfile], error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("profileUsecase.SubscribeProfile called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
	)

	load := func(ctx context.Context) (*responses.UserProfile, error) {
		profile, err := uc.GetProfileByID(ctx, session.UID)
		if err != nil {
			return nil, err
		}
		return utils.BuildUserProfileResponse(profile, uc.pictureURL(ctx, profile.ProfilePicture)), nil
	}
	watch := func(ctx context.Context) (<-chan struct{}, error) {
		return uc.ChangeFeed.Watch(ctx, session.UID)
	}

	ticket := uc.subscriptions.Reserve(session.SessionID)
	sub, err := subscription.Start(ctx, subscription.Config{
		Name:             "profile:" + session.UID,
		Log:              uc.Log,
		ReloadsPerSecond: uc.InternalConfig.Projector.ReloadsPerSecond,
		ReloadBurst:      uc.InternalConfig.Projector.ReloadBurst,
	}, load, watch)
	if err != nil {
		ticket.Release()
		uc.Log.Error("profileUsecase.SubscribeProfile error starting subscription",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !ticket.Attach(sub) {
		uc.Log.Info("profileUsecase.SubscribeProfile session signed out while starting",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, session.SessionID),
		)
		return nil, exceptions.ErrSessionNotFound(nil)
	}
	go func() {
		<-sub.Done()
		ticket.Release()
	}()

	uc.Log.Info("profileUsecase.SubscribeProfile succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingOpenStreamsKey, uc.subscriptions.Count(session.SessionID)),
	)
	return sub, nil
}

func (uc *profileUsecase) HandleIdentityChange(change models.IdentityChange) {
	if change.Type != models.IdentitySignedOut {
		return
	}
	closed := uc.subscriptions.CloseOwner(change.SessionID)
	if closed > 0 {
		uc.Log.Info("profileUsecase.HandleIdentityChange closed subscriptions",
			zap.String(constvars.LoggingSessionIDKey, change.SessionID),
			zap.Int(constvars.LoggingResponseCountKey, closed),
		)
	}
}

func (uc *profileUsecase) CloseAll() {
	uc.subscriptions.CloseAll()
}
