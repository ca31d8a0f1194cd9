package services

import (
	"context"
	"fmt"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// Executor issues one search-analytics query per site and reshapes the
// response rows into a tagged frame. It has no side effects beyond the
// network call and mutates no shared state.
type Executor struct {
	rowLimit int64
}

// NewExecutor creates an executor. A non-positive rowLimit falls back to the
// single-page default.
func NewExecutor(rowLimit int64) *Executor {
	if rowLimit <= 0 {
		rowLimit = domain.DefaultRowLimit
	}
	return &Executor{rowLimit: rowLimit}
}

// Run queries one site and returns its frame. Zero response rows yield an
// empty frame, not an error. Dimension values arrive as an ordered key list
// per row: with more than one dimension they expand positionally into
// key-1..key-N columns; with exactly one they stay under a single "keys"
// column. A row whose key list is shorter than the dimension count is padded
// with nulls instead of aborting the site.
func (e *Executor) Run(
	ctx context.Context,
	client driven.SearchConsoleClient,
	site domain.Site,
	req domain.QueryRequest,
) (domain.Frame, error) {
	rows, err := client.Query(ctx, site.SiteURL, driven.SearchQuery{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Dimensions: req.Dimensions,
		SearchType: req.SearchType,
		RowLimit:   e.rowLimit,
	})
	if err != nil {
		return domain.Frame{}, fmt.Errorf("search analytics query: %w", err)
	}

	frame := newFrame(req.Dimensions)
	if len(rows) == 0 {
		logger.Debug("No data returned for %s", site.SiteURL)
		return frame, nil
	}

	for _, r := range rows {
		frame.Rows = append(frame.Rows, buildRow(frame, site, req.Dimensions, r))
	}
	return frame, nil
}

// newFrame fixes the column set and shape for one site's result under a
// given dimension set.
func newFrame(dimensions []string) domain.Frame {
	cols := []string{domain.ColRootDomain, domain.ColSiteURL}
	shape := domain.ShapeSingle
	if len(dimensions) > 1 {
		shape = domain.ShapeMulti
		for i := range dimensions {
			cols = append(cols, domain.KeyColumn(i))
		}
	} else {
		cols = append(cols, domain.ColKeys)
	}
	cols = append(cols, domain.ColClicks, domain.ColImpressions, domain.ColCTR, domain.ColPosition)
	return domain.Frame{Shape: shape, Columns: cols}
}

func buildRow(frame domain.Frame, site domain.Site, dimensions []string, r driven.SearchRow) domain.Row {
	row := domain.Row{
		domain.ColRootDomain:  site.Domain,
		domain.ColSiteURL:     site.SiteURL,
		domain.ColClicks:      r.Clicks,
		domain.ColImpressions: r.Impressions,
		domain.ColCTR:         r.CTR,
		domain.ColPosition:    r.Position,
	}

	if frame.Shape == domain.ShapeSingle {
		if len(r.Keys) > 0 {
			row[domain.ColKeys] = r.Keys[0]
		}
		return row
	}

	if len(r.Keys) != len(dimensions) {
		logger.Warn("Site %s returned %d keys for %d dimensions; padding",
			site.SiteURL, len(r.Keys), len(dimensions))
	}
	for i := range dimensions {
		if i < len(r.Keys) {
			row[domain.KeyColumn(i)] = r.Keys[i]
		}
		// Missing trailing positions stay absent and render as null.
	}
	return row
}
