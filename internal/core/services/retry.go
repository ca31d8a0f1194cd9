package services

import (
	"context"
	"strings"
	"time"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// Retry defaults, matching the documented CLI defaults.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second
)

// transientMarkers classify an error as likely-to-succeed-on-retry. Matched
// case-insensitively as substrings of the error text, covering quota, rate
// limit, timeout and 5xx conditions.
var transientMarkers = []string{
	"rate",
	"quota",
	"timeout",
	"internal error",
	"500",
	"503",
	"429",
}

// IsTransient reports whether an error looks retryable.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Retryer wraps an operation with exponential backoff on transient failure.
// Non-transient errors surface immediately without sleeping.
type Retryer struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// Delay is the base backoff; attempt n sleeps Delay * 2^(n-1).
	Delay time.Duration

	// sleep is swappable for tests. Defaults to a context-aware sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryer creates a retry controller. Non-positive arguments fall back to
// the defaults.
func NewRetryer(maxRetries int, delay time.Duration) *Retryer {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &Retryer{MaxRetries: maxRetries, Delay: delay, sleep: sleepCtx}
}

// Do runs fn, retrying transient failures up to MaxRetries additional times
// with exponential backoff. On exhaustion the last error is returned as a
// terminal (non-transient) QueryError so the caller treats the site as
// failed rather than crashing the run. Returns the number of attempts made.
func (r *Retryer) Do(ctx context.Context, siteURL string, fn func(context.Context) error) (int, error) {
	attempts := 0
	for attempt := 1; ; attempt++ {
		attempts++
		err := fn(ctx)
		if err == nil {
			return attempts, nil
		}

		if !IsTransient(err) {
			return attempts, &domain.QueryError{SiteURL: siteURL, Err: err}
		}
		if attempt > r.MaxRetries {
			return attempts, &domain.QueryError{SiteURL: siteURL, Transient: true, Exhausted: true, Err: err}
		}

		backoff := r.Delay * (1 << (attempt - 1))
		logger.Debug("Retrying %s (attempt %d/%d) after %s: %v",
			siteURL, attempt, r.MaxRetries, backoff, err)
		if serr := r.sleep(ctx, backoff); serr != nil {
			return attempts, &domain.QueryError{SiteURL: siteURL, Err: serr}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
