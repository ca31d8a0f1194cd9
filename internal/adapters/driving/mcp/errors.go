// Package mcp provides an MCP (Model Context Protocol) server adapter for
// sitepulse. It lets AI assistants run Search Console and Analytics fetches
// through the same core services the CLI uses.
package mcp

import "errors"

// ErrMissingFetcher is returned when the fetcher service is not provided.
var ErrMissingFetcher = errors.New("mcp: fetcher service is required")

// ErrMissingCatalog is returned when the site catalog is not provided.
var ErrMissingCatalog = errors.New("mcp: site catalog is required")
