package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/analyticsadmin/v1beta"
	"google.golang.org/api/analyticsdata/v1beta"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
)

// Ensure AnalyticsClient implements the driven port.
var _ driven.AnalyticsClient = (*AnalyticsClient)(nil)

// AnalyticsClient adapts the Analytics Data and Admin APIs to the core's
// AnalyticsClient port for one authorized account.
type AnalyticsClient struct {
	data    *analyticsdata.Service
	admin   *analyticsadmin.Service
	limiter *RateLimiter
}

// NewAnalyticsClient wraps authorized Analytics services. A nil limiter
// creates a default one for the Analytics service.
func NewAnalyticsClient(data *analyticsdata.Service, admin *analyticsadmin.Service, limiter *RateLimiter) *AnalyticsClient {
	if limiter == nil {
		limiter = NewRateLimiter(ServiceAnalytics)
	}
	return &AnalyticsClient{data: data, admin: admin, limiter: limiter}
}

// ListProperties enumerates accessible properties via account summaries,
// following pagination until exhausted.
func (c *AnalyticsClient) ListProperties(ctx context.Context) ([]driven.PropertySummary, error) {
	var props []driven.PropertySummary

	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := c.admin.AccountSummaries.List().PageSize(200).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("accountsummaries.list: %w", WrapError(err))
		}

		for _, acct := range resp.AccountSummaries {
			for _, p := range acct.PropertySummaries {
				// Property arrives as "properties/123456".
				id := strings.TrimPrefix(p.Property, "properties/")
				props = append(props, driven.PropertySummary{
					ID:          id,
					DisplayName: p.DisplayName,
				})
			}
		}

		if resp.NextPageToken == "" {
			return props, nil
		}
		pageToken = resp.NextPageToken
	}
}

// RunReport issues one report request for a property.
func (c *AnalyticsClient) RunReport(ctx context.Context, propertyID string, q driven.ReportQuery) ([]driven.ReportRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{
			{StartDate: q.StartDate, EndDate: q.EndDate},
		},
		Limit: q.RowLimit,
	}
	for _, d := range q.Dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range q.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}
	if q.HostnameFilter != "" {
		req.DimensionFilter = &analyticsdata.FilterExpression{
			Filter: &analyticsdata.Filter{
				FieldName: "hostname",
				StringFilter: &analyticsdata.StringFilter{
					MatchType: "EXACT",
					Value:     q.HostnameFilter,
				},
			},
		}
	}

	resp, err := c.data.Properties.RunReport("properties/"+propertyID, req).Context(ctx).Do()
	if err != nil {
		err = WrapError(err)
		if IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("properties.runReport: %w", err)
	}

	rows := make([]driven.ReportRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		row := driven.ReportRow{}
		for _, dv := range r.DimensionValues {
			row.DimensionValues = append(row.DimensionValues, dv.Value)
		}
		for _, mv := range r.MetricValues {
			row.MetricValues = append(row.MetricValues, mv.Value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
