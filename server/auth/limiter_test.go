package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLoginLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limiter := newLoginLimiter(rate.Every(time.Minute), 2)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.Allow("10.0.0.1"))
	require.True(t, limiter.Allow("10.0.0.1"))
	require.False(t, limiter.Allow("10.0.0.1"))

	// Keys are throttled independently.
	require.True(t, limiter.Allow("10.0.0.2"))

	now = now.Add(time.Minute)
	require.True(t, limiter.Allow("10.0.0.1"))
	require.False(t, limiter.Allow("10.0.0.1"))
}

func TestLoginLimiterEvictsIdleKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limiter := newLoginLimiter(rate.Every(time.Minute), 1)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.Allow("a"))
	now = now.Add(limiterIdleTTL + time.Second)
	require.True(t, limiter.Allow("b"))
	require.NotContains(t, limiter.limiters, "a")
	require.Contains(t, limiter.limiters, "b")
}
