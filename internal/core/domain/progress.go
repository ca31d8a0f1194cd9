package domain

// Progress event names emitted during a fetch run.
const (
	EventRunStarted   = "run_started"
	EventSiteStarted  = "site_started"
	EventSiteFinished = "site_finished"
	EventRunFinished  = "run_finished"
)

// ProgressEvent is one structured progress update. Current/Total count
// completed site queries; SiteURL and RootDomain are set on per-site events.
type ProgressEvent struct {
	Event      string `json:"event"`
	Message    string `json:"message"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	SiteURL    string `json:"siteUrl,omitempty"`
	RootDomain string `json:"rootDomain,omitempty"`
}

// ProgressFunc receives progress events from a fetch run. Errors returned by
// (or panics escaping) the callback are logged and swallowed: a broken
// listener never affects data collection.
type ProgressFunc func(ProgressEvent) error
