package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorized (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the API rate limit or quota was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded (429)")

	// ErrServerError indicates a 5xx response from the API.
	ErrServerError = errors.New("google: internal error (500)")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// WrapError converts a Google API error to a more specific error type. The
// sentinels' texts carry the status markers the retry classifier matches on,
// so transient API failures stay retryable after wrapping.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch {
	case gerr.Code == http.StatusUnauthorized:
		return ErrUnauthorized
	case gerr.Code == http.StatusForbidden:
		// 403 is also how quota exhaustion surfaces; keep those retryable.
		for _, item := range gerr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "quotaExceeded" ||
				item.Reason == "userRateLimitExceeded" {
				return ErrRateLimited
			}
		}
		return ErrForbidden
	case gerr.Code == http.StatusNotFound:
		return ErrNotFound
	case gerr.Code == http.StatusTooManyRequests:
		return ErrRateLimited
	case gerr.Code >= http.StatusInternalServerError:
		return ErrServerError
	default:
		return err
	}
}
