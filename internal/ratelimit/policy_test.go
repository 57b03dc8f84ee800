package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/cactripplanner/shortlinks/internal/ratelimit"
	"github.com/cactripplanner/shortlinks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyBuilder(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().
		AddLimit(ratelimit.ScopeWrite, 10, time.Minute).
		AddLimit(ratelimit.ScopeWrite, 100, time.Hour).
		Build()

	assert.Equal(t, []ratelimit.LimitConfig{
		{Window: time.Minute, Max: 10},
		{Window: time.Hour, Max: 100},
	}, policy.Limits[ratelimit.ScopeWrite])
	assert.Empty(t, policy.Limits[ratelimit.ScopeRead])
}

func TestShortenLimits(t *testing.T) {
	assert.Equal(t, []ratelimit.LimitConfig{
		{Window: time.Minute, Max: 10},
		{Window: time.Hour, Max: 100},
		{Window: 24 * time.Hour, Max: 500},
	}, ratelimit.ShortenLimits())
}

func TestPolicyLimiter_Allow(t *testing.T) {
	t.Run("reports the scope that was exceeded", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeGlobal, 10, time.Minute).
			AddLimit(ratelimit.ScopeWrite, 2, time.Minute).
			Build()
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)
		scopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

		for range 2 {
			allowed, exceeded, err := limiter.Allow(context.Background(), "client", scopes)

			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Nil(t, exceeded)
		}

		allowed, exceeded, err := limiter.Allow(context.Background(), "client", scopes)

		require.NoError(t, err)
		assert.False(t, allowed)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeWrite, exceeded.Scope)
		assert.Equal(t, int64(3), exceeded.Count)
	})

	t.Run("ignores scopes without limits", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeWrite, 1, time.Minute).Build()
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)

		for range 5 {
			allowed, _, err := limiter.Allow(context.Background(), "client", []ratelimit.Scope{ratelimit.ScopeRead})

			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})
}

func TestPolicyLimiter_AllowLimits(t *testing.T) {
	limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), ratelimit.DefaultPolicy())
	limits := []ratelimit.LimitConfig{
		{Window: time.Minute, Max: 3},
		{Window: time.Hour, Max: 2},
	}

	for range 2 {
		allowed, _, err := limiter.AllowLimits(context.Background(), "client", "/shorten/", limits)

		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, exceeded, err := limiter.AllowLimits(context.Background(), "client", "/shorten/", limits)

	require.NoError(t, err)
	assert.False(t, allowed)
	require.NotNil(t, exceeded)
	assert.Equal(t, time.Hour, exceeded.Config.Window)

	allowed, _, _ = limiter.AllowLimits(context.Background(), "client", "/{key}", limits)
	assert.True(t, allowed, "routes are tracked separately")
}
