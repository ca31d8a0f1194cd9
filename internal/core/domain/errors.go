package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrAuth indicates the client factory could not authorize for an
	// account. Unrecoverable for the run; never retried.
	ErrAuth = errors.New("authorization failed")

	// ErrTransientAPI indicates a site-listing call failed with a
	// retryable status. The catalog does not retry listing itself; the
	// caller may re-invoke.
	ErrTransientAPI = errors.New("transient API error")

	// ErrUnparseableSite indicates a raw site identifier yields no
	// canonical domain. The site is skipped with a warning, never
	// surfaced to the caller.
	ErrUnparseableSite = errors.New("unparseable site identifier")

	// ErrInvalidDateRange indicates a malformed or inverted date range.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidRequest indicates a request that fails validation for a
	// reason other than its date range, such as an empty dimension set.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyResult indicates a query completed but returned no rows.
	ErrEmptyResult = errors.New("no data found")
)

// QueryError is a per-site query failure. Transient failures are retried by
// the backoff controller; permanent ones surface immediately. Neither aborts
// other sites' queries.
type QueryError struct {
	SiteURL   string
	Transient bool
	Exhausted bool
	Err       error
}

func (e *QueryError) Error() string {
	switch {
	case e.Exhausted:
		return fmt.Sprintf("query %s: retries exhausted: %v", e.SiteURL, e.Err)
	case e.Transient:
		return fmt.Sprintf("query %s: transient: %v", e.SiteURL, e.Err)
	default:
		return fmt.Sprintf("query %s: %v", e.SiteURL, e.Err)
	}
}

func (e *QueryError) Unwrap() error { return e.Err }
