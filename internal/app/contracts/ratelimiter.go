package contracts

import (
	"context"
	"docbook-service/internal/app/models"
)

type ResourceLimiter interface {
	ApplyResourceLimiter(ctx context.Context, in *models.RateLimitInput) (*models.RateLimitDecision, error)
}
