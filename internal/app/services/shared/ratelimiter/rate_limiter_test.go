package ratelimiter

import (
	"context"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/redis/redistest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplyResourceLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 8, 0, 10, 0, time.UTC)

	t.Run("Allows Up To Quota Within Window", func(t *testing.T) {
		limiter := NewResourceLimiter(redistest.NewFakeRepository(), zap.NewNop())
		input := &models.RateLimitInput{
			ResourceName:      "p1",
			LimiterGroupName:  "ratelimit:booking:",
			WindowDurationSec: 60,
			MaxQuota:          2,
			NowUTC:            now,
		}

		for i := 0; i < 2; i++ {
			decision, err := limiter.ApplyResourceLimiter(ctx, input)
			require.NoError(t, err)
			assert.True(t, decision.Allowed)
		}

		decision, err := limiter.ApplyResourceLimiter(ctx, input)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, 51, decision.RetryAfterSecs)
	})

	t.Run("Next Window Resets", func(t *testing.T) {
		limiter := NewResourceLimiter(redistest.NewFakeRepository(), zap.NewNop())
		input := &models.RateLimitInput{
			ResourceName:      "p1",
			LimiterGroupName:  "ratelimit:booking:",
			WindowDurationSec: 60,
			MaxQuota:          1,
			NowUTC:            now,
		}

		decision, err := limiter.ApplyResourceLimiter(ctx, input)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)

		input.NowUTC = now.Add(time.Minute)
		decision, err = limiter.ApplyResourceLimiter(ctx, input)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("Zero Quota Disables Limiting", func(t *testing.T) {
		limiter := NewResourceLimiter(redistest.NewFakeRepository(), zap.NewNop())
		decision, err := limiter.ApplyResourceLimiter(ctx, &models.RateLimitInput{ResourceName: "p1", LimiterGroupName: "g"})
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("Nil Input", func(t *testing.T) {
		limiter := NewResourceLimiter(redistest.NewFakeRepository(), zap.NewNop())
		decision, err := limiter.ApplyResourceLimiter(ctx, nil)
		assert.Error(t, err)
		assert.False(t, decision.Allowed)
	})
}
