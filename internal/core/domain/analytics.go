package domain

// Property is one Analytics 4 property accessible to an account.
type Property struct {
	ID          string `json:"property_id"`
	DisplayName string `json:"property_name"`
	Account     string `json:"account"`
}

// Columns added to Analytics report rows for provenance.
const (
	ColPropertyID   = "property_id"
	ColPropertyName = "property_name"
)

// ReportRequest describes one Analytics 4 report. Unlike the Search Console
// path there is no scheme reconciliation: one dimension/metric request per
// property.
type ReportRequest struct {
	StartDate  string
	EndDate    string
	Dimensions []string
	Metrics    []string
	// PropertyID limits the report to one property; empty means every
	// accessible property.
	PropertyID string
	Account    string
	// HostnameFilter optionally restricts rows to one hostname.
	HostnameFilter string
}

// Validate checks the report's date range and requested fields.
func (r ReportRequest) Validate() error {
	q := QueryRequest{StartDate: r.StartDate, EndDate: r.EndDate, Dimensions: r.Dimensions}
	if err := q.Validate(); err != nil {
		return err
	}
	return nil
}
