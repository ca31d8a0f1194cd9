package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
)

func TestSiteCache_GetSet(t *testing.T) {
	clock := newFakeClock()
	cache := NewSiteCache(5*time.Minute, clock.Now)

	_, ok := cache.Get("acct")
	assert.False(t, ok)

	cache.Set("acct", []domain.Site{{SiteURL: "sc-domain:example.com", Domain: "example.com"}})

	sites, ok := cache.Get("acct")
	require.True(t, ok)
	require.Len(t, sites, 1)
	assert.Equal(t, "example.com", sites[0].Domain)
}

func TestSiteCache_Expiry(t *testing.T) {
	clock := newFakeClock()
	cache := NewSiteCache(5*time.Minute, clock.Now)
	cache.Set("acct", []domain.Site{{Domain: "example.com"}})

	clock.Advance(4 * time.Minute)
	_, ok := cache.Get("acct")
	assert.True(t, ok, "entry should survive inside the TTL")

	clock.Advance(time.Minute)
	_, ok = cache.Get("acct")
	assert.False(t, ok, "entry must expire exactly at the TTL boundary")
}

func TestSiteCache_CopyOnGet(t *testing.T) {
	cache := NewSiteCache(time.Minute, nil)
	cache.Set("acct", []domain.Site{{Domain: "example.com"}})

	sites, ok := cache.Get("acct")
	require.True(t, ok)
	sites[0].Domain = "mutated.com"

	fresh, ok := cache.Get("acct")
	require.True(t, ok)
	assert.Equal(t, "example.com", fresh[0].Domain)
}

func TestSiteCache_Invalidate(t *testing.T) {
	cache := NewSiteCache(time.Minute, nil)
	cache.Set("a", []domain.Site{{Domain: "a.com"}})
	cache.Set("b", []domain.Site{{Domain: "b.com"}})

	cache.Invalidate("a")
	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.True(t, ok)

	cache.Invalidate("")
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestSiteCache_Stats(t *testing.T) {
	clock := newFakeClock()
	cache := NewSiteCache(5*time.Minute, clock.Now)
	cache.Set("a", nil)
	clock.Advance(6 * time.Minute)
	cache.Set("b", nil)

	stats := cache.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ValidEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
	assert.Equal(t, 300, stats.TTLSeconds)
}

func newTestCatalog(factory *mockFactory) *Catalog {
	return NewCatalog(factory, NewSiteCache(time.Minute, nil))
}

func TestCatalog_ListSites_CanonicalizesAndSkips(t *testing.T) {
	factory := newMockFactory()
	factory.clients[""] = &mockSCClient{sites: []driven.SiteEntry{
		{SiteURL: "sc-domain:example.com", PermissionLevel: "siteOwner"},
		{SiteURL: "https://www.other.org/", PermissionLevel: "siteFullUser"},
		{SiteURL: "sc-domain:hidden.net", PermissionLevel: domain.PermissionUnverified},
		{SiteURL: "sc-domain:", PermissionLevel: "siteOwner"},
	}}

	catalog := newTestCatalog(factory)
	sites, err := catalog.ListSites(context.Background(), "", true)
	require.NoError(t, err)

	require.Len(t, sites, 2, "unverified and unparseable sites are dropped")
	assert.Equal(t, "example.com", sites[0].Domain)
	assert.Equal(t, domain.PropertyDomain, sites[0].PropertyType)
	assert.Equal(t, "other.org", sites[1].Domain)
	assert.Equal(t, domain.PropertyURLPrefix, sites[1].PropertyType)
}

func TestCatalog_ListSites_UsesCache(t *testing.T) {
	factory := newMockFactory()
	client := &mockSCClient{sites: []driven.SiteEntry{
		{SiteURL: "sc-domain:example.com", PermissionLevel: "siteOwner"},
	}}
	factory.clients[""] = client

	catalog := newTestCatalog(factory)

	_, err := catalog.ListSites(context.Background(), "", true)
	require.NoError(t, err)
	_, err = catalog.ListSites(context.Background(), "", true)
	require.NoError(t, err)
	assert.Equal(t, 1, client.listCall, "second listing must come from cache")

	// Bypassing the cache forces a fresh call.
	_, err = catalog.ListSites(context.Background(), "", false)
	require.NoError(t, err)
	assert.Equal(t, 2, client.listCall)
}

func TestCatalog_ListSites_InvalidateForcesRefresh(t *testing.T) {
	factory := newMockFactory()
	client := &mockSCClient{sites: []driven.SiteEntry{
		{SiteURL: "sc-domain:example.com", PermissionLevel: "siteOwner"},
	}}
	factory.clients[""] = client

	catalog := newTestCatalog(factory)
	_, err := catalog.ListSites(context.Background(), "", true)
	require.NoError(t, err)

	catalog.Invalidate("")
	_, err = catalog.ListSites(context.Background(), "", true)
	require.NoError(t, err)
	assert.Equal(t, 2, client.listCall)
}

func TestCatalog_ListSites_AuthError(t *testing.T) {
	factory := newMockFactory()
	factory.scErr = errors.New("no token file")

	catalog := newTestCatalog(factory)
	_, err := catalog.ListSites(context.Background(), "acct", true)
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestCatalog_ListSites_TransientListing(t *testing.T) {
	factory := newMockFactory()
	factory.clients[""] = &mockSCClient{listErr: errors.New("quota exceeded")}

	catalog := newTestCatalog(factory)
	_, err := catalog.ListSites(context.Background(), "", true)
	assert.True(t, errors.Is(err, domain.ErrTransientAPI))
}

func TestCatalog_ListSites_MultiAccountFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\n\nbob\n"), 0600))

	factory := newMockFactory()
	factory.clients["alice"] = &mockSCClient{sites: []driven.SiteEntry{
		{SiteURL: "sc-domain:a.com", PermissionLevel: "siteOwner"},
	}}
	factory.clients["bob"] = &mockSCClient{sites: []driven.SiteEntry{
		{SiteURL: "sc-domain:b.com", PermissionLevel: "siteOwner"},
	}}

	catalog := newTestCatalog(factory)
	sites, err := catalog.ListSites(context.Background(), path, true)
	require.NoError(t, err)

	require.Len(t, sites, 2)
	assert.Equal(t, "alice", sites[0].Account)
	assert.Equal(t, "bob", sites[1].Account)
}

func TestCatalog_ListSites_MultiAccountPartialFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\nbob\n"), 0600))

	factory := newMockFactory()
	factory.clients["alice"] = &mockSCClient{listErr: errors.New("backend timeout")}
	factory.clients["bob"] = &mockSCClient{sites: []driven.SiteEntry{
		{SiteURL: "sc-domain:b.com", PermissionLevel: "siteOwner"},
	}}

	catalog := newTestCatalog(factory)
	sites, err := catalog.ListSites(context.Background(), path, true)
	require.NoError(t, err, "one bad account must not sink the others")
	require.Len(t, sites, 1)
	assert.Equal(t, "b.com", sites[0].Domain)
}

func TestCatalog_ListSites_MultiAccountAllFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\nbob\n"), 0600))

	factory := newMockFactory()
	factory.clients["alice"] = &mockSCClient{listErr: errors.New("backend timeout")}
	factory.clients["bob"] = &mockSCClient{listErr: errors.New("quota exceeded")}

	catalog := newTestCatalog(factory)
	_, err := catalog.ListSites(context.Background(), path, true)
	assert.Error(t, err)
}

func TestResolveAccounts(t *testing.T) {
	assert.Equal(t, []string{""}, resolveAccounts(""))
	assert.Equal(t, []string{"plain"}, resolveAccounts("plain"))

	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte(" alice \nbob\n\n"), 0600))
	assert.Equal(t, []string{"alice", "bob"}, resolveAccounts(path))
}
