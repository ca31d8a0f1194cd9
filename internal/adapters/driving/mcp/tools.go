package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
)

// QueryInput is the input schema for the query_gsc_data tool.
type QueryInput struct {
	StartDate  string `json:"start_date" jsonschema:"start of the date range, YYYY-MM-DD"`
	EndDate    string `json:"end_date" jsonschema:"end of the date range, YYYY-MM-DD (inclusive)"`
	SearchType string `json:"search_type,omitempty" jsonschema:"web, image or video (default web)"`
	Dimensions string `json:"dimensions,omitempty" jsonschema:"comma-separated dimensions, e.g. page,query,country,device (default page)"`
	Account    string `json:"account,omitempty" jsonschema:"account identifier, or path of a file listing one account per line"`
	Domain     string `json:"domain,omitempty" jsonschema:"restrict the run to one domain, e.g. example.com"`
	WaitSecs   int    `json:"wait_seconds,omitempty" jsonschema:"fixed delay before each site query, for quota safety"`
	MaxRetries int    `json:"max_retries,omitempty" jsonschema:"retry attempts per site for transient failures (default 3)"`
	RetryDelay int    `json:"retry_delay_seconds,omitempty" jsonschema:"base retry delay in seconds, doubled per attempt (default 5)"`
}

// QueryOutput is the output schema for the query_gsc_data tool.
type QueryOutput struct {
	RunID     string              `json:"run_id"`
	Columns   []string            `json:"columns"`
	Rows      []domain.Row        `json:"rows"`
	RowCount  int                 `json:"row_count"`
	Sites     []domain.SiteReport `json:"sites"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// DomainsInput is the input schema for the list_gsc_domains tool.
type DomainsInput struct {
	Account string `json:"account,omitempty" jsonschema:"account identifier, or path of a file listing one account per line"`
	NoCache bool   `json:"no_cache,omitempty" jsonschema:"bypass the site listing cache"`
}

// DomainsOutput is the output schema for the list_gsc_domains tool.
type DomainsOutput struct {
	Sites []domain.Site `json:"sites"`
	Count int           `json:"count"`
}

// ReportInput is the input schema for the query_ga4_data tool.
type ReportInput struct {
	StartDate  string `json:"start_date" jsonschema:"start of the date range, YYYY-MM-DD"`
	EndDate    string `json:"end_date" jsonschema:"end of the date range, YYYY-MM-DD (inclusive)"`
	Dimensions string `json:"dimensions,omitempty" jsonschema:"comma-separated GA4 dimensions (default pagePath)"`
	Metrics    string `json:"metrics,omitempty" jsonschema:"comma-separated GA4 metrics (default screenPageViews)"`
	PropertyID string `json:"property_id,omitempty" jsonschema:"limit the report to one property"`
	Account    string `json:"account,omitempty" jsonschema:"account identifier"`
	Hostname   string `json:"hostname,omitempty" jsonschema:"restrict rows to one hostname"`
}

// ReportOutput is the output schema for the query_ga4_data tool.
type ReportOutput struct {
	Columns  []string     `json:"columns"`
	Rows     []domain.Row `json:"rows"`
	RowCount int          `json:"row_count"`
}

// PropertiesInput is the input schema for the list_ga4_properties tool.
type PropertiesInput struct {
	Account string `json:"account,omitempty" jsonschema:"account identifier"`
}

// PropertiesOutput is the output schema for the list_ga4_properties tool.
type PropertiesOutput struct {
	Properties []domain.Property `json:"properties"`
	Count      int               `json:"count"`
}

// CacheStatsOutput is the output schema for the cache_stats tool.
type CacheStatsOutput struct {
	Listing domain.CatalogCacheStats `json:"listing"`
	Results *resultCacheStats        `json:"results,omitempty"`
}

type resultCacheStats struct {
	TotalEntries   int   `json:"total_entries"`
	ValidEntries   int   `json:"valid_entries"`
	ExpiredEntries int   `json:"expired_entries"`
	SizeBytes      int64 `json:"size_bytes"`
}

// InvalidateInput is the input schema for the invalidate_cache tool.
type InvalidateInput struct {
	Account string `json:"account,omitempty" jsonschema:"drop only this account's listing; empty drops all"`
	Results bool   `json:"results,omitempty" jsonschema:"also purge the disk-backed result cache"`
}

// InvalidateOutput is the output schema for the invalidate_cache tool.
type InvalidateOutput struct {
	ResultsPurged int `json:"results_purged"`
}

var errAnalyticsUnavailable = errors.New("mcp: analytics service not configured")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_gsc_data",
		Description: "Fetch Search Console search analytics across all accessible sites",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_gsc_domains",
		Description: "List Search Console properties accessible to the configured accounts",
	}, s.handleDomains)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_ga4_data",
		Description: "Fetch a Google Analytics 4 report across accessible properties",
	}, s.handleReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_ga4_properties",
		Description: "List Google Analytics 4 properties accessible to the account",
	}, s.handleProperties)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Report site listing and result cache occupancy",
	}, s.handleCacheStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "invalidate_cache",
		Description: "Drop cached site listings and optionally purge cached results",
	}, s.handleInvalidate)
}

// handleQuery handles the query_gsc_data tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	searchType := input.SearchType
	if searchType == "" {
		searchType = domain.SearchTypeWeb
	}
	dims := domain.ParseDimensions(input.Dimensions)
	if len(dims) == 0 {
		dims = []string{"page"}
	}

	req := domain.QueryRequest{
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		SearchType:  searchType,
		Dimensions:  dims,
		Account:     input.Account,
		Filter:      domain.NewDomainFilter(input.Domain),
		WaitSeconds: input.WaitSecs,
		MaxRetries:  input.MaxRetries,
		RetryDelay:  time.Duration(input.RetryDelay) * time.Second,
	}

	result, err := s.ports.Fetcher.Fetch(ctx, req, nil)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	return nil, QueryOutput{
		RunID:     result.RunID,
		Columns:   result.Table.Columns,
		Rows:      result.Table.Rows,
		RowCount:  result.Table.Len(),
		Sites:     result.Sites,
		Succeeded: result.Succeeded(),
		Failed:    result.Failed(),
	}, nil
}

// handleDomains handles the list_gsc_domains tool invocation.
func (s *Server) handleDomains(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DomainsInput,
) (*mcp.CallToolResult, DomainsOutput, error) {
	sites, err := s.ports.Catalog.ListSites(ctx, input.Account, !input.NoCache)
	if err != nil {
		return nil, DomainsOutput{}, err
	}
	return nil, DomainsOutput{Sites: sites, Count: len(sites)}, nil
}

// handleReport handles the query_ga4_data tool invocation.
func (s *Server) handleReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReportInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	if s.ports.Analytics == nil {
		return nil, ReportOutput{}, errAnalyticsUnavailable
	}

	req := domain.ReportRequest{
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Dimensions:     domain.ParseDimensions(input.Dimensions),
		Metrics:        domain.ParseDimensions(input.Metrics),
		PropertyID:     input.PropertyID,
		Account:        input.Account,
		HostnameFilter: input.Hostname,
	}

	table, err := s.ports.Analytics.FetchReport(ctx, req)
	if err != nil {
		return nil, ReportOutput{}, err
	}
	return nil, ReportOutput{Columns: table.Columns, Rows: table.Rows, RowCount: table.Len()}, nil
}

// handleProperties handles the list_ga4_properties tool invocation.
func (s *Server) handleProperties(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PropertiesInput,
) (*mcp.CallToolResult, PropertiesOutput, error) {
	if s.ports.Analytics == nil {
		return nil, PropertiesOutput{}, errAnalyticsUnavailable
	}

	props, err := s.ports.Analytics.ListProperties(ctx, input.Account)
	if err != nil {
		return nil, PropertiesOutput{}, err
	}
	return nil, PropertiesOutput{Properties: props, Count: len(props)}, nil
}

// handleCacheStats handles the cache_stats tool invocation.
func (s *Server) handleCacheStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, CacheStatsOutput, error) {
	out := CacheStatsOutput{Listing: s.ports.Catalog.CacheStats()}

	if s.ports.Cache != nil {
		stats, err := s.ports.Cache.Stats(ctx)
		if err != nil {
			return nil, CacheStatsOutput{}, err
		}
		out.Results = &resultCacheStats{
			TotalEntries:   stats.TotalEntries,
			ValidEntries:   stats.ValidEntries,
			ExpiredEntries: stats.ExpiredEntries,
			SizeBytes:      stats.SizeBytes,
		}
	}
	return nil, out, nil
}

// handleInvalidate handles the invalidate_cache tool invocation.
func (s *Server) handleInvalidate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InvalidateInput,
) (*mcp.CallToolResult, InvalidateOutput, error) {
	s.ports.Catalog.Invalidate(input.Account)

	out := InvalidateOutput{}
	if input.Results && s.ports.Cache != nil {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		n, err := s.ports.Cache.Purge(ctx, false)
		if err != nil {
			return nil, InvalidateOutput{}, err
		}
		out.ResultsPurged = n
	}
	return nil, out, nil
}
