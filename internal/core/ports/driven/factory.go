package driven

import "context"

// ClientFactory produces authorized API clients keyed by account identifier.
// Credential acquisition and token refresh are the factory's concern; the
// core only sees that it may fail with domain.ErrAuth.
type ClientFactory interface {
	SearchConsole(ctx context.Context, account string) (SearchConsoleClient, error)
	Analytics(ctx context.Context, account string) (AnalyticsClient, error)
}
