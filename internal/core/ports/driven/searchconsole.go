// Package driven defines the ports the core services depend on. Adapters
// implement these against real infrastructure; tests implement them as mocks.
package driven

import (
	"context"
)

// SiteEntry is one raw site listing entry as reported by the Search Console
// API, before canonicalization.
type SiteEntry struct {
	SiteURL         string
	PermissionLevel string
}

// SearchQuery is the body of one search-analytics request.
type SearchQuery struct {
	StartDate  string
	EndDate    string
	Dimensions []string
	SearchType string
	RowLimit   int64
}

// SearchRow is one search-analytics response row. Keys holds the ordered
// dimension values; its length normally equals the dimension count but the
// API is not trusted on that.
type SearchRow struct {
	Keys        []string
	Clicks      float64
	Impressions float64
	CTR         float64
	Position    float64
}

// SearchConsoleClient is an authorized Search Console client for one account.
type SearchConsoleClient interface {
	// ListSites enumerates every property the account can access.
	ListSites(ctx context.Context) ([]SiteEntry, error)

	// Query issues one search-analytics request for a site. At most one
	// page is requested.
	Query(ctx context.Context, siteURL string, q SearchQuery) ([]SearchRow, error)
}
