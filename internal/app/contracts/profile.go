package contracts

import (
	"context"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/subscription"
	"docbook-service/internal/pkg/dto/requests"
	"docbook-service/internal/pkg/dto/responses"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, uid string) (*models.Profile, error)
	FindByRole(ctx context.Context, role models.Role) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	FindDoctorListings(ctx context.Context) ([]models.DoctorListing, error)
}

type ProfileChangeFeed interface {
	Watch(ctx context.Context, uid string) (<-chan struct{}, error)
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, session *models.Session) (*responses.UserProfile, error)
	GetProfileByID(ctx context.Context, uid string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, session *models.Session, request *requests.UpdateProfile) (*responses.UserProfile, error)
	ListDoctors(ctx context.Context) ([]responses.Doctor, error)
	ListPatients(ctx context.Context, session *models.Session) ([]responses.UserProfile, error)
	SubscribeProfile(ctx context.Context, session *models.Session) (*subscription.Subscription[*responses.UserProfile], error)
	HandleIdentityChange(change models.IdentityChange)
	CloseAll()
}
