package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
)

// queryRequest is the JSON body of POST /api/v1/gsc/query.
type queryRequest struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	SearchType  string `json:"search_type"`
	Dimensions  string `json:"dimensions"`
	Account     string `json:"account"`
	Domain      string `json:"domain"`
	WaitSeconds int    `json:"wait_seconds"`
	MaxRetries  int    `json:"max_retries"`
	RetryDelay  int    `json:"retry_delay_seconds"`
}

// reportRequest is the JSON body of POST /api/v1/ga4/query.
type reportRequest struct {
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Dimensions string `json:"dimensions"`
	Metrics    string `json:"metrics"`
	PropertyID string `json:"property_id"`
	Account    string `json:"account"`
	Hostname   string `json:"hostname"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body queryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	searchType := body.SearchType
	if searchType == "" {
		searchType = domain.SearchTypeWeb
	}
	dims := domain.ParseDimensions(body.Dimensions)
	if len(dims) == 0 {
		dims = []string{"page"}
	}

	req := domain.QueryRequest{
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		SearchType:  searchType,
		Dimensions:  dims,
		Account:     body.Account,
		Filter:      domain.NewDomainFilter(body.Domain),
		WaitSeconds: body.WaitSeconds,
		MaxRetries:  body.MaxRetries,
		RetryDelay:  time.Duration(body.RetryDelay) * time.Second,
	}

	result, err := s.fetcher.Fetch(r.Context(), req, nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	useCache := r.URL.Query().Get("no_cache") != "true"

	sites, err := s.catalog.ListSites(r.Context(), account, useCache)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sites": sites, "count": len(sites)})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.analytics == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("analytics not configured"))
		return
	}

	var body reportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req := domain.ReportRequest{
		StartDate:      body.StartDate,
		EndDate:        body.EndDate,
		Dimensions:     domain.ParseDimensions(body.Dimensions),
		Metrics:        domain.ParseDimensions(body.Metrics),
		PropertyID:     body.PropertyID,
		Account:        body.Account,
		HostnameFilter: body.Hostname,
	}

	table, err := s.analytics.FetchReport(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	if s.analytics == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("analytics not configured"))
		return
	}

	props, err := s.analytics.ListProperties(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": props, "count": len(props)})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"listing": s.catalog.CacheStats()}
	if s.cache != nil {
		stats, err := s.cache.Stats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		out["results"] = stats
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.catalog.Invalidate(r.URL.Query().Get("account"))

	purged := 0
	if s.cache != nil && r.URL.Query().Get("results") == "true" {
		n, err := s.cache.Purge(r.Context(), false)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		purged = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"results_purged": purged})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps core errors onto HTTP statuses. Per-site failures never
// reach here; they ride inside a 200 response's site breakdown.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDateRange), errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrTransientAPI):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
