// Package driving defines the interfaces the core exposes to its callers
// (CLI, REST, MCP). Adapters depend on these, never on concrete services.
package driving

import (
	"context"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
)

// SiteCatalog lists Search Console properties and manages the listing cache.
type SiteCatalog interface {
	// ListSites enumerates accessible sites for an account identifier
	// (or, in multi-account mode, a file of identifiers).
	ListSites(ctx context.Context, account string, useCache bool) ([]domain.Site, error)

	// Invalidate drops the cached listing for one account, or every
	// account when account is empty.
	Invalidate(account string)

	// CacheStats reports listing-cache occupancy for observability.
	CacheStats() domain.CatalogCacheStats
}

// Fetcher runs multi-site search-analytics queries.
type Fetcher interface {
	Fetch(ctx context.Context, req domain.QueryRequest, progress domain.ProgressFunc) (domain.FetchResult, error)
}

// Analytics runs the Analytics 4 reporting path.
type Analytics interface {
	ListProperties(ctx context.Context, account string) ([]domain.Property, error)
	FetchReport(ctx context.Context, req domain.ReportRequest) (domain.Table, error)
}
