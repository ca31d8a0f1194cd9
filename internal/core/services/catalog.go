// Package services holds the core engine: site catalog, query executor,
// retry controller, fetch orchestrator and result aggregator.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driving"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// DefaultCatalogTTL bounds how long a cached site listing is served before a
// fresh listing call is made.
const DefaultCatalogTTL = 5 * time.Minute

type cacheEntry struct {
	sites     []domain.Site
	timestamp time.Time
}

// SiteCache is a TTL cache for per-account site listings. It is an explicit
// object with an injected clock rather than package state, so expiry is
// deterministic under test. Safe for concurrent use.
type SiteCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewSiteCache creates a cache with the given TTL. A non-positive TTL falls
// back to the default; a nil clock defaults to time.Now.
func NewSiteCache(ttl time.Duration, now func() time.Time) *SiteCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SiteCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns a copy of the cached listing for account, or ok=false if the
// entry is absent or expired. The copy keeps callers from corrupting the
// cached slice.
func (c *SiteCache) Get(account string) ([]domain.Site, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[account]
	if !ok || c.now().Sub(e.timestamp) >= c.ttl {
		return nil, false
	}
	out := make([]domain.Site, len(e.sites))
	copy(out, e.sites)
	return out, true
}

// Set stores a listing for account with the current timestamp.
func (c *SiteCache) Set(account string, sites []domain.Site) {
	stored := make([]domain.Site, len(sites))
	copy(stored, sites)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[account] = cacheEntry{sites: stored, timestamp: c.now()}
}

// Invalidate removes one account's entry, or every entry when account is
// empty, regardless of TTL.
func (c *SiteCache) Invalidate(account string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if account == "" {
		c.entries = make(map[string]cacheEntry)
		return
	}
	delete(c.entries, account)
}

// Stats reports cache occupancy.
func (c *SiteCache) Stats() domain.CatalogCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	valid := 0
	for _, e := range c.entries {
		if c.now().Sub(e.timestamp) < c.ttl {
			valid++
		}
	}
	return domain.CatalogCacheStats{
		TotalEntries:   len(c.entries),
		ValidEntries:   valid,
		ExpiredEntries: len(c.entries) - valid,
		TTLSeconds:     int(c.ttl / time.Second),
	}
}

// Ensure Catalog implements the driving port.
var _ driving.SiteCatalog = (*Catalog)(nil)

// Catalog enumerates accessible Search Console sites per account, annotated
// with canonical domain and property type. Listing is expensive and
// rate-limited, so results are cached; listing failures are not auto-retried
// (only per-site queries are).
type Catalog struct {
	factory driven.ClientFactory
	cache   *SiteCache

	// inflight serializes listing calls per account so concurrent misses
	// for the same account do not race to populate one cache slot.
	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewCatalog creates a catalog backed by the given client factory and cache.
func NewCatalog(factory driven.ClientFactory, cache *SiteCache) *Catalog {
	return &Catalog{
		factory:  factory,
		cache:    cache,
		inflight: make(map[string]*sync.Mutex),
	}
}

// ListSites enumerates sites for an account identifier. If the identifier
// resolves to a readable file, each non-blank line is treated as a separate
// account and all results are concatenated (multi-account mode). Unverified
// sites and unparseable identifiers are dropped before return.
func (c *Catalog) ListSites(ctx context.Context, account string, useCache bool) ([]domain.Site, error) {
	accounts := resolveAccounts(account)

	var all []domain.Site
	var errs []error
	for _, acct := range accounts {
		sites, err := c.listAccount(ctx, acct, useCache)
		if err != nil {
			if len(accounts) == 1 {
				return nil, err
			}
			// Multi-account mode: one bad account does not sink the rest.
			logger.Warn("Listing failed for account %q: %v", acct, err)
			errs = append(errs, err)
			continue
		}
		all = append(all, sites...)
	}

	if all == nil && len(errs) == len(accounts) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

// listAccount lists one account, cache-checked.
func (c *Catalog) listAccount(ctx context.Context, account string, useCache bool) ([]domain.Site, error) {
	lock := c.accountLock(account)
	lock.Lock()
	defer lock.Unlock()

	if useCache {
		if sites, ok := c.cache.Get(account); ok {
			logger.Debug("Site cache hit for account %q (%d sites)", account, len(sites))
			return sites, nil
		}
	}

	client, err := c.factory.SearchConsole(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: account %q: %w", domain.ErrAuth, account, err)
	}

	entries, err := client.ListSites(ctx)
	if err != nil {
		if IsTransient(err) {
			return nil, fmt.Errorf("%w: list sites for %q: %w", domain.ErrTransientAPI, account, err)
		}
		return nil, fmt.Errorf("list sites for %q: %w", account, err)
	}

	sites := make([]domain.Site, 0, len(entries))
	for _, e := range entries {
		if e.PermissionLevel == domain.PermissionUnverified {
			continue
		}
		canonical, ptype, err := domain.Canonicalize(e.SiteURL)
		if err != nil {
			logger.Warn("Skipping site %q: %v", e.SiteURL, err)
			continue
		}
		sites = append(sites, domain.Site{
			SiteURL:         e.SiteURL,
			Domain:          canonical,
			PropertyType:    ptype,
			PermissionLevel: e.PermissionLevel,
			Account:         account,
		})
	}

	if useCache {
		c.cache.Set(account, sites)
	}
	logger.Debug("Listed %d sites for account %q", len(sites), account)
	return sites, nil
}

// Invalidate drops cached listings for one account or all accounts.
func (c *Catalog) Invalidate(account string) {
	c.cache.Invalidate(account)
}

// CacheStats reports listing-cache occupancy.
func (c *Catalog) CacheStats() domain.CatalogCacheStats {
	return c.cache.Stats()
}

func (c *Catalog) accountLock(account string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.inflight[account]
	if !ok {
		lock = &sync.Mutex{}
		c.inflight[account] = lock
	}
	return lock
}

// resolveAccounts expands an account identifier into the list of accounts to
// query. A readable file switches on multi-account mode: one identifier per
// non-blank line.
func resolveAccounts(account string) []string {
	account = strings.TrimSpace(account)
	if account == "" {
		return []string{""}
	}

	data, err := os.ReadFile(account)
	if err != nil {
		return []string{account}
	}

	var accounts []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			accounts = append(accounts, line)
		}
	}
	if len(accounts) == 0 {
		return []string{account}
	}
	return accounts
}
