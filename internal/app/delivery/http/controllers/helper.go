package controllers

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/subscription"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

func sessionFromRequest(r *http.Request) (*models.Session, bool) {
	session, ok := r.Context().Value(constvars.CONTEXT_SESSION_KEY).(*models.Session)
	return session, ok && session != nil
}

func requestTimeout(internalConfig *config.InternalConfig) time.Duration {
	if internalConfig == nil || internalConfig.App.RequestTimeoutInSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(internalConfig.App.RequestTimeoutInSeconds) * time.Second
}

func buildUsecaseErrorResponse(log *zap.Logger, w http.ResponseWriter, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(log, w, err)
}

func heartbeatInterval(internalConfig *config.InternalConfig) time.Duration {
	if internalConfig == nil || internalConfig.Projector.HeartbeatIntervalInSecs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(internalConfig.Projector.HeartbeatIntervalInSecs) * time.Second
}

// streamSnapshots writes every snapshot of sub as one SSE event until the
// client goes away or the subscription ends.
func streamSnapshots[T any](
	ctx context.Context,
	log *zap.Logger,
	sse *utils.SSEWriter,
	sub *subscription.Subscription[T],
	heartbeat time.Duration,
	render func(T) interface{},
) {
	requestID := utils.GetRequestID(ctx)
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				if err := sub.Err(); err != nil {
					log.Warn("stream ended by subscription",
						zap.String(constvars.LoggingRequestIDKey, requestID),
						zap.Error(err),
					)
				}
				return
			}
			if err := sse.WriteEvent(constvars.SSEEventSnapshot, render(snapshot)); err != nil {
				log.Info("stream client write failed",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			if err := sse.WriteHeartbeat(); err != nil {
				return
			}
		}
	}
}
