// Package google adapts the Google reporting APIs (Search Console,
// Analytics 4) to the core's driven ports.
package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/analyticsadmin/v1beta"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
	"google.golang.org/api/webmasters/v3"
)

// OAuth scopes required by the adapters.
const (
	ScopeWebmastersReadonly = "https://www.googleapis.com/auth/webmasters.readonly"
	ScopeAnalyticsReadonly  = "https://www.googleapis.com/auth/analytics.readonly"
)

// NewWebmastersService creates a Search Console API service using the
// provided TokenSource.
func NewWebmastersService(ctx context.Context, ts oauth2.TokenSource) (*webmasters.Service, error) {
	return webmasters.NewService(ctx, option.WithTokenSource(ts))
}

// NewAnalyticsDataService creates an Analytics Data API service using the
// provided TokenSource.
func NewAnalyticsDataService(ctx context.Context, ts oauth2.TokenSource) (*analyticsdata.Service, error) {
	return analyticsdata.NewService(ctx, option.WithTokenSource(ts))
}

// NewAnalyticsAdminService creates an Analytics Admin API service using the
// provided TokenSource. Used for property enumeration only.
func NewAnalyticsAdminService(ctx context.Context, ts oauth2.TokenSource) (*analyticsadmin.Service, error) {
	return analyticsadmin.NewService(ctx, option.WithTokenSource(ts))
}
