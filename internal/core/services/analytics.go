package services

import (
	"context"
	"fmt"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driving"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// Default Analytics report fields.
const (
	DefaultAnalyticsDimension = "pagePath"
	DefaultAnalyticsMetric    = "screenPageViews"
)

// Ensure Analytics implements the driving port.
var _ driving.Analytics = (*Analytics)(nil)

// Analytics is the Analytics 4 reporting path. It is structurally simpler
// than the Search Console engine: one dimension/metric request per property,
// no property-scheme reconciliation and no retry engine. Transient failures
// surface to the caller.
type Analytics struct {
	factory  driven.ClientFactory
	rowLimit int64
}

// NewAnalytics creates the Analytics service.
func NewAnalytics(factory driven.ClientFactory, rowLimit int64) *Analytics {
	if rowLimit <= 0 {
		rowLimit = domain.DefaultRowLimit
	}
	return &Analytics{factory: factory, rowLimit: rowLimit}
}

// ListProperties enumerates accessible Analytics 4 properties for an account.
func (a *Analytics) ListProperties(ctx context.Context, account string) ([]domain.Property, error) {
	client, err := a.factory.Analytics(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: account %q: %w", domain.ErrAuth, account, err)
	}

	summaries, err := client.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties for %q: %w", account, err)
	}

	props := make([]domain.Property, 0, len(summaries))
	for _, s := range summaries {
		props = append(props, domain.Property{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			Account:     account,
		})
	}
	return props, nil
}

// FetchReport runs one report per targeted property and merges the results,
// tagging every row with property provenance. A property that fails is
// logged and skipped; the report covers the properties that answered.
func (a *Analytics) FetchReport(ctx context.Context, req domain.ReportRequest) (domain.Table, error) {
	if len(req.Dimensions) == 0 {
		req.Dimensions = []string{DefaultAnalyticsDimension}
	}
	if len(req.Metrics) == 0 {
		req.Metrics = []string{DefaultAnalyticsMetric}
	}
	if err := req.Validate(); err != nil {
		return domain.Table{}, err
	}

	client, err := a.factory.Analytics(ctx, req.Account)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: account %q: %w", domain.ErrAuth, req.Account, err)
	}

	targets, err := a.resolveTargets(ctx, client, req)
	if err != nil {
		return domain.Table{}, err
	}

	frames := make([]domain.Frame, 0, len(targets))
	for _, prop := range targets {
		rows, err := client.RunReport(ctx, prop.ID, driven.ReportQuery{
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			Dimensions:     req.Dimensions,
			Metrics:        req.Metrics,
			HostnameFilter: req.HostnameFilter,
			RowLimit:       a.rowLimit,
		})
		if err != nil {
			logger.Warn("Report failed for property %s: %v", prop.ID, err)
			continue
		}
		frames = append(frames, reportFrame(prop, req, rows))
	}

	return Aggregate(frames), nil
}

func (a *Analytics) resolveTargets(ctx context.Context, client driven.AnalyticsClient, req domain.ReportRequest) ([]domain.Property, error) {
	if req.PropertyID != "" {
		return []domain.Property{{ID: req.PropertyID, DisplayName: req.PropertyID, Account: req.Account}}, nil
	}

	summaries, err := client.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties for %q: %w", req.Account, err)
	}
	props := make([]domain.Property, 0, len(summaries))
	for _, s := range summaries {
		props = append(props, domain.Property{ID: s.ID, DisplayName: s.DisplayName, Account: req.Account})
	}
	return props, nil
}

// reportFrame lays one property's report rows out as dimension and metric
// columns plus property provenance.
func reportFrame(prop domain.Property, req domain.ReportRequest, rows []driven.ReportRow) domain.Frame {
	cols := []string{domain.ColPropertyID, domain.ColPropertyName}
	cols = append(cols, req.Dimensions...)
	cols = append(cols, req.Metrics...)

	frame := domain.Frame{Shape: domain.ShapeMulti, Columns: cols}
	for _, r := range rows {
		row := domain.Row{
			domain.ColPropertyID:   prop.ID,
			domain.ColPropertyName: prop.DisplayName,
		}
		for i, d := range req.Dimensions {
			if i < len(r.DimensionValues) {
				row[d] = r.DimensionValues[i]
			}
		}
		for i, m := range req.Metrics {
			if i < len(r.MetricValues) {
				row[m] = r.MetricValues[i]
			}
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame
}
