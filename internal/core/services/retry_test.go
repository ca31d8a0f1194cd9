package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
)

func TestIsTransient(t *testing.T) {
	transient := []string{
		"Rate limit exceeded",
		"quotaExceeded for project",
		"deadline timeout",
		"backend returned 500",
		"service unavailable (503)",
		"too many requests (429)",
		"Internal Error encountered",
	}
	for _, text := range transient {
		assert.True(t, IsTransient(errors.New(text)), "expected transient: %q", text)
	}

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("permission denied")))
	assert.False(t, IsTransient(errors.New("invalid argument")))
}

func newTestRetryer(maxRetries int, sleeper *noSleep) *Retryer {
	r := NewRetryer(maxRetries, time.Second)
	r.sleep = sleeper.sleep
	return r
}

func TestRetryer_Do_SuccessFirstAttempt(t *testing.T) {
	sleeper := &noSleep{}
	r := newTestRetryer(3, sleeper)

	attempts, err := r.Do(context.Background(), "sc-domain:example.com", func(context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeper.slept)
}

func TestRetryer_Do_SuccessSecondAttempt(t *testing.T) {
	sleeper := &noSleep{}
	r := newTestRetryer(3, sleeper)

	calls := 0
	attempts, err := r.Do(context.Background(), "sc-domain:example.com", func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("quota exceeded")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "exactly two calls: one failure, one success")
	assert.Equal(t, 2, attempts)
}

func TestRetryer_Do_PermanentErrorNoRetry(t *testing.T) {
	sleeper := &noSleep{}
	r := newTestRetryer(3, sleeper)

	calls := 0
	attempts, err := r.Do(context.Background(), "sc-domain:example.com", func(context.Context) error {
		calls++
		return errors.New("permission denied")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent errors must not be retried")
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeper.slept)

	var qerr *domain.QueryError
	require.True(t, errors.As(err, &qerr))
	assert.False(t, qerr.Exhausted)
}

func TestRetryer_Do_Exhaustion(t *testing.T) {
	sleeper := &noSleep{}
	r := newTestRetryer(3, sleeper)

	calls := 0
	attempts, err := r.Do(context.Background(), "sc-domain:example.com", func(context.Context) error {
		calls++
		return errors.New("rate limit")
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls, "initial attempt plus three retries")
	assert.Equal(t, 4, attempts)

	var qerr *domain.QueryError
	require.True(t, errors.As(err, &qerr))
	assert.True(t, qerr.Exhausted)
	assert.Equal(t, "sc-domain:example.com", qerr.SiteURL)
}

func TestRetryer_Do_ExponentialBackoff(t *testing.T) {
	sleeper := &noSleep{}
	r := newTestRetryer(3, sleeper)

	r.Do(context.Background(), "sc-domain:example.com", func(context.Context) error { //nolint:errcheck
		return errors.New("timeout")
	})

	// Delay doubles per attempt: d, 2d, 4d.
	require.Len(t, sleeper.slept, 3)
	assert.Equal(t, time.Second, sleeper.slept[0])
	assert.Equal(t, 2*time.Second, sleeper.slept[1])
	assert.Equal(t, 4*time.Second, sleeper.slept[2])
}

func TestRetryer_Do_CancelledSleep(t *testing.T) {
	sleeper := &noSleep{retErr: context.Canceled}
	r := newTestRetryer(3, sleeper)

	_, err := r.Do(context.Background(), "sc-domain:example.com", func(context.Context) error {
		return errors.New("timeout")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewRetryer_Defaults(t *testing.T) {
	r := NewRetryer(0, 0)
	assert.Equal(t, DefaultMaxRetries, r.MaxRetries)
	assert.Equal(t, DefaultRetryDelay, r.Delay)
}
