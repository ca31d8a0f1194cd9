package driven

import "context"

// PropertySummary is one Analytics 4 property visible to an account.
type PropertySummary struct {
	ID          string
	DisplayName string
}

// ReportQuery is the body of one Analytics 4 report request.
type ReportQuery struct {
	StartDate      string
	EndDate        string
	Dimensions     []string
	Metrics        []string
	HostnameFilter string
	RowLimit       int64
}

// ReportRow is one Analytics report row: dimension values then metric values,
// both in request order.
type ReportRow struct {
	DimensionValues []string
	MetricValues    []string
}

// AnalyticsClient is an authorized Analytics 4 client for one account.
type AnalyticsClient interface {
	ListProperties(ctx context.Context) ([]PropertySummary, error)
	RunReport(ctx context.Context, propertyID string, q ReportQuery) ([]ReportRow, error)
}
