package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_KnownServices(t *testing.T) {
	sc := NewRateLimiter(ServiceSearchConsole)
	require.NotNil(t, sc)
	ga := NewRateLimiter(ServiceAnalytics)
	require.NotNil(t, ga)

	// Unknown services fall back to conservative defaults.
	other := NewRateLimiter(ServiceType("unknown"))
	require.NotNil(t, other)
}

func TestRateLimiter_WaitWithinBurst(t *testing.T) {
	r := NewRateLimiter(ServiceSearchConsole)

	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "first request rides the burst bucket")
}

func TestRateLimiter_WaitRespectsCancellation(t *testing.T) {
	r := NewRateLimiter(ServiceSearchConsole)
	r.RecordRateLimitError(30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
