package google

import (
	"context"
	"fmt"

	"google.golang.org/api/webmasters/v3"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
)

// Ensure SearchConsoleClient implements the driven port.
var _ driven.SearchConsoleClient = (*SearchConsoleClient)(nil)

// SearchConsoleClient adapts the webmasters/v3 API to the core's
// SearchConsoleClient port. One client serves one authorized account; the
// rate limiter guards every outgoing call.
type SearchConsoleClient struct {
	svc     *webmasters.Service
	limiter *RateLimiter
}

// NewSearchConsoleClient wraps an authorized webmasters service. A nil
// limiter creates a default one for the Search Console service.
func NewSearchConsoleClient(svc *webmasters.Service, limiter *RateLimiter) *SearchConsoleClient {
	if limiter == nil {
		limiter = NewRateLimiter(ServiceSearchConsole)
	}
	return &SearchConsoleClient{svc: svc, limiter: limiter}
}

// ListSites enumerates every property the account can access.
func (c *SearchConsoleClient) ListSites(ctx context.Context) ([]driven.SiteEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Sites.List().Context(ctx).Do()
	if err != nil {
		err = WrapError(err)
		if IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("sites.list: %w", err)
	}

	entries := make([]driven.SiteEntry, 0, len(resp.SiteEntry))
	for _, e := range resp.SiteEntry {
		entries = append(entries, driven.SiteEntry{
			SiteURL:         e.SiteUrl,
			PermissionLevel: e.PermissionLevel,
		})
	}
	return entries, nil
}

// Query issues one search-analytics request for a site, requesting a single
// page bounded by q.RowLimit.
func (c *SearchConsoleClient) Query(ctx context.Context, siteURL string, q driven.SearchQuery) ([]driven.SearchRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := &webmasters.SearchAnalyticsQueryRequest{
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
		Dimensions: q.Dimensions,
		SearchType: q.SearchType,
		RowLimit:   q.RowLimit,
	}
	resp, err := c.svc.Searchanalytics.Query(siteURL, req).Context(ctx).Do()
	if err != nil {
		err = WrapError(err)
		if IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("searchanalytics.query: %w", err)
	}

	rows := make([]driven.SearchRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		rows = append(rows, driven.SearchRow{
			Keys:        r.Keys,
			Clicks:      r.Clicks,
			Impressions: r.Impressions,
			CTR:         r.Ctr,
			Position:    r.Position,
		})
	}
	return rows, nil
}
