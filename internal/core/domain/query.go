package domain

import (
	"fmt"
	"strings"
	"time"
)

// Search types accepted by the search-analytics API.
const (
	SearchTypeWeb   = "web"
	SearchTypeImage = "image"
	SearchTypeVideo = "video"
)

// DefaultRowLimit is the single-page row bound per site query. Pagination
// beyond it is out of scope; callers needing more narrow the date range or
// dimensions.
const DefaultRowLimit = 25000

// Well-known column names of the result table.
const (
	ColRootDomain  = "rootDomain"
	ColSiteURL     = "siteUrl"
	ColKeys        = "keys"
	ColClicks      = "clicks"
	ColImpressions = "impressions"
	ColCTR         = "ctr"
	ColPosition    = "position"
)

// KeyColumn names the positional dimension column for multi-dimension
// results: key-1 .. key-N.
func KeyColumn(i int) string {
	return fmt.Sprintf("key-%d", i+1)
}

// QueryRequest describes one fetch run across all matched sites.
type QueryRequest struct {
	StartDate  string
	EndDate    string
	SearchType string
	// Dimensions is the ordered dimension set applied to every site in
	// the run, e.g. ["page"] or ["page", "query", "country", "device"].
	Dimensions []string
	// Account is a single account identifier, or the path of a file
	// holding one identifier per line (multi-account mode).
	Account string
	// Filter narrows the discovered site set. Zero value matches all.
	Filter DomainFilter
	// WaitSeconds is an optional fixed delay before each site's dispatch,
	// trading latency for quota safety. Applied once per site, not per
	// retry.
	WaitSeconds int
	MaxRetries  int
	RetryDelay  time.Duration
}

// ParseDimensions splits a comma-separated dimension string, dropping blanks.
func ParseDimensions(s string) []string {
	var out []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Validate checks the request's date range and dimension set.
func (r QueryRequest) Validate() error {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start date %q", ErrInvalidDateRange, r.StartDate)
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end date %q", ErrInvalidDateRange, r.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: %s after %s", ErrInvalidDateRange, r.StartDate, r.EndDate)
	}
	if len(r.Dimensions) == 0 {
		return fmt.Errorf("%w: no dimensions", ErrInvalidRequest)
	}
	return nil
}

// Shape tags how dimension values are laid out in a frame's columns. The
// aggregator matches on the tag instead of re-deriving dimension count from
// column names.
type Shape int

const (
	// ShapeSingle keeps the lone dimension value under a "keys" column,
	// preserving the historical single-dimension layout.
	ShapeSingle Shape = iota
	// ShapeMulti expands dimension values positionally into key-1..key-N.
	ShapeMulti
)

// Row is one reporting row keyed by column name. Missing cells stay absent
// and render as null.
type Row map[string]any

// Frame is the result of one site's query: rows plus the shape tag and the
// ordered column set they were produced under. An empty frame (zero rows) is
// a valid result, not an error.
type Frame struct {
	Shape   Shape
	Columns []string
	Rows    []Row
}

// Empty reports whether the frame carries no rows.
func (f Frame) Empty() bool {
	return len(f.Rows) == 0
}

// Table is the aggregated result of a run: the column-set union of all
// non-empty frames, rows reindexed contiguously. A table is never nil; a run
// with no data yields an explicitly empty table.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the row count.
func (t Table) Len() int {
	return len(t.Rows)
}

// JobState is the terminal state of one site's query job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
	JobExhausted JobState = "exhausted"
)

// SiteReport is the per-site outcome included with every fetch result so
// partial failure is visible, not silent.
type SiteReport struct {
	SiteURL    string   `json:"siteUrl"`
	RootDomain string   `json:"rootDomain"`
	Account    string   `json:"account"`
	State      JobState `json:"state"`
	// Attempts counts query attempts actually made, including retries.
	Attempts int    `json:"attempts"`
	Rows     int    `json:"rows"`
	Error    string `json:"error,omitempty"`
}

// FetchResult is the complete outcome of a run: the aggregated table plus
// the per-site breakdown.
type FetchResult struct {
	RunID string       `json:"runId"`
	Table Table        `json:"table"`
	Sites []SiteReport `json:"sites"`
}

// Succeeded counts sites whose query completed with data or empty result.
func (r FetchResult) Succeeded() int {
	n := 0
	for _, s := range r.Sites {
		if s.State == JobSucceeded {
			n++
		}
	}
	return n
}

// Failed counts sites whose query terminally failed.
func (r FetchResult) Failed() int {
	return len(r.Sites) - r.Succeeded()
}
