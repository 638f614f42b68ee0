package middlewares

import (
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"

	"go.uber.org/zap"
)

type Middlewares struct {
	Log             *zap.Logger
	IdentityUsecase contracts.IdentityUsecase
	InternalConfig  *config.InternalConfig
}

func NewMiddlewares(logger *zap.Logger, identityUsecase contracts.IdentityUsecase, internalConfig *config.InternalConfig) *Middlewares {
	return &Middlewares{
		Log:             logger,
		IdentityUsecase: identityUsecase,
		InternalConfig:  internalConfig,
	}
}
