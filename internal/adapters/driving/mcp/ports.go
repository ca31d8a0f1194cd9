package mcp

import (
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Fetcher runs multi-site search-analytics queries.
	Fetcher driving.Fetcher

	// Catalog lists accessible Search Console properties.
	Catalog driving.SiteCatalog

	// Analytics runs the Analytics 4 reporting path. Optional.
	Analytics driving.Analytics

	// Cache is the disk-backed result cache. Optional.
	Cache driven.ResultCache
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Fetcher == nil {
		return ErrMissingFetcher
	}
	if p.Catalog == nil {
		return ErrMissingCatalog
	}
	// Analytics and Cache are optional; their tools report unavailability.
	return nil
}
