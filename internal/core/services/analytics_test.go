package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
)

func reportRequest() domain.ReportRequest {
	return domain.ReportRequest{
		StartDate:  "2026-07-01",
		EndDate:    "2026-07-31",
		Dimensions: []string{"pagePath"},
		Metrics:    []string{"screenPageViews"},
	}
}

func TestAnalytics_ListProperties(t *testing.T) {
	factory := newMockFactory()
	factory.analytics[""] = &mockAnalyticsClient{properties: []driven.PropertySummary{
		{ID: "123", DisplayName: "Main site"},
		{ID: "456", DisplayName: "Blog"},
	}}

	props, err := NewAnalytics(factory, 0).ListProperties(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "123", props[0].ID)
	assert.Equal(t, "Blog", props[1].DisplayName)
}

func TestAnalytics_ListProperties_AuthError(t *testing.T) {
	factory := newMockFactory()
	factory.gaErr = errors.New("no token")

	_, err := NewAnalytics(factory, 0).ListProperties(context.Background(), "acct")
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestAnalytics_FetchReport_AllProperties(t *testing.T) {
	factory := newMockFactory()
	factory.analytics[""] = &mockAnalyticsClient{
		properties: []driven.PropertySummary{
			{ID: "123", DisplayName: "Main site"},
			{ID: "456", DisplayName: "Blog"},
		},
		reportFn: func(propertyID string, _ driven.ReportQuery) ([]driven.ReportRow, error) {
			return []driven.ReportRow{
				{DimensionValues: []string{"/home"}, MetricValues: []string{"42"}},
			}, nil
		},
	}

	table, err := NewAnalytics(factory, 0).FetchReport(context.Background(), reportRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len(), "one row per property")
	assert.Equal(t,
		[]string{"property_id", "property_name", "pagePath", "screenPageViews"},
		table.Columns)
	assert.Equal(t, "/home", table.Rows[0]["pagePath"])
	assert.Equal(t, "42", table.Rows[0]["screenPageViews"])
}

func TestAnalytics_FetchReport_SingleProperty(t *testing.T) {
	factory := newMockFactory()
	factory.analytics[""] = &mockAnalyticsClient{
		properties: []driven.PropertySummary{{ID: "999"}},
		reportFn: func(propertyID string, _ driven.ReportQuery) ([]driven.ReportRow, error) {
			assert.Equal(t, "123", propertyID)
			return []driven.ReportRow{{DimensionValues: []string{"/x"}, MetricValues: []string{"1"}}}, nil
		},
	}

	req := reportRequest()
	req.PropertyID = "123"
	table, err := NewAnalytics(factory, 0).FetchReport(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "123", table.Rows[0]["property_id"])
}

func TestAnalytics_FetchReport_FailedPropertySkipped(t *testing.T) {
	factory := newMockFactory()
	factory.analytics[""] = &mockAnalyticsClient{
		properties: []driven.PropertySummary{
			{ID: "123", DisplayName: "Main site"},
			{ID: "456", DisplayName: "Blog"},
		},
		reportFn: func(propertyID string, _ driven.ReportQuery) ([]driven.ReportRow, error) {
			if propertyID == "123" {
				return nil, errors.New("quota exceeded")
			}
			return []driven.ReportRow{{DimensionValues: []string{"/b"}, MetricValues: []string{"7"}}}, nil
		},
	}

	table, err := NewAnalytics(factory, 0).FetchReport(context.Background(), reportRequest())
	require.NoError(t, err, "a failing property is skipped, not fatal")
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "456", table.Rows[0]["property_id"])
}

func TestAnalytics_FetchReport_DefaultFields(t *testing.T) {
	factory := newMockFactory()
	factory.analytics[""] = &mockAnalyticsClient{
		properties: []driven.PropertySummary{{ID: "123"}},
		reportFn: func(_ string, q driven.ReportQuery) ([]driven.ReportRow, error) {
			assert.Equal(t, []string{DefaultAnalyticsDimension}, q.Dimensions)
			assert.Equal(t, []string{DefaultAnalyticsMetric}, q.Metrics)
			return nil, nil
		},
	}

	req := reportRequest()
	req.Dimensions = nil
	req.Metrics = nil
	_, err := NewAnalytics(factory, 0).FetchReport(context.Background(), req)
	require.NoError(t, err)
}

func TestAnalytics_FetchReport_InvalidDates(t *testing.T) {
	req := reportRequest()
	req.StartDate = "bad"
	_, err := NewAnalytics(newMockFactory(), 0).FetchReport(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrInvalidDateRange))
}
