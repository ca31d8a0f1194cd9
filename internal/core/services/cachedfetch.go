package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driving"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// DefaultResultTTL bounds how long a cached run result is served before the
// API is consulted again. Search-analytics data for a fixed date range is
// stable, but permissions and site sets drift.
const DefaultResultTTL = 12 * time.Hour

// Ensure CachedFetcher implements the driving port.
var _ driving.Fetcher = (*CachedFetcher)(nil)

// CachedFetcher decorates a Fetcher with a disk-backed result cache. Hits are
// served without touching the API; cache failures degrade to a plain fetch
// and are logged, never surfaced.
type CachedFetcher struct {
	next  driving.Fetcher
	cache driven.ResultCache
	ttl   time.Duration
}

// NewCachedFetcher wraps next with cache. A non-positive ttl falls back to
// the default.
func NewCachedFetcher(next driving.Fetcher, cache driven.ResultCache, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &CachedFetcher{next: next, cache: cache, ttl: ttl}
}

// Fetch serves the run from cache when an identical request was answered
// within the TTL, otherwise delegates and stores the outcome. Runs with any
// failed site are not cached, so a transient outage cannot pin a partial
// result for the full TTL.
func (c *CachedFetcher) Fetch(ctx context.Context, req domain.QueryRequest, progress domain.ProgressFunc) (domain.FetchResult, error) {
	if err := req.Validate(); err != nil {
		return domain.FetchResult{}, err
	}

	key := RequestKey(req)
	if payload, ok, err := c.cache.Get(ctx, key); err != nil {
		logger.Warn("Result cache read failed: %v", err)
	} else if ok {
		var result domain.FetchResult
		if err := json.Unmarshal(payload, &result); err != nil {
			logger.Warn("Result cache entry unreadable, refetching: %v", err)
		} else {
			logger.Debug("Result cache hit for key %s", key)
			return result, nil
		}
	}

	result, err := c.next.Fetch(ctx, req, progress)
	if err != nil {
		return result, err
	}

	if result.Failed() > 0 {
		return result, nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		logger.Warn("Result cache encode failed: %v", err)
		return result, nil
	}
	if err := c.cache.Set(ctx, key, payload, c.ttl); err != nil {
		logger.Warn("Result cache write failed: %v", err)
	}
	return result, nil
}

// RequestKey derives the stable cache key for a request: a SHA-256 over the
// fields that determine the result set. Retry and pacing knobs are excluded,
// since they change how the data is fetched, not what comes back.
func RequestKey(req domain.QueryRequest) string {
	canonical := fmt.Sprintf("gsc|%s|%s|%s|%s|%s|%s",
		req.StartDate, req.EndDate, req.SearchType,
		strings.Join(req.Dimensions, ","), req.Account, req.Filter.Domain())
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
