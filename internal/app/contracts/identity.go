package contracts

import (
	"context"
	"docbook-service/internal/app/models"
)

type AccountRepository interface {
	// CreateAccount stores the credentials, the profile and, for doctors, the
	// directory listing atomically.
	CreateAccount(ctx context.Context, account *models.Account, profile *models.Profile) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

type IdentityUsecase interface {
	CreateAccount(ctx context.Context, input *models.CreateAccountInput) (*models.Identity, error)
	Authenticate(ctx context.Context, email, password string) (*models.AuthResult, error)
	Deauthenticate(ctx context.Context, session *models.Session) error
	CurrentIdentity(ctx context.Context, token string) (*models.Session, error)
	OnIdentityChange(observer func(models.IdentityChange)) (unsubscribe func())
}
