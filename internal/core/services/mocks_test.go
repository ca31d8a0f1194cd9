package services

import (
	"context"
	"sync"
	"time"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
)

// fakeClock is an adjustable clock for cache expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockSCClient implements driven.SearchConsoleClient with canned responses
// and call counting.
type mockSCClient struct {
	mu sync.Mutex

	sites    []driven.SiteEntry
	listErr  error
	listCall int

	queryFn    func(siteURL string, q driven.SearchQuery) ([]driven.SearchRow, error)
	queryCalls []string
}

func (m *mockSCClient) ListSites(_ context.Context) ([]driven.SiteEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCall++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sites, nil
}

func (m *mockSCClient) Query(_ context.Context, siteURL string, q driven.SearchQuery) ([]driven.SearchRow, error) {
	m.mu.Lock()
	m.queryCalls = append(m.queryCalls, siteURL)
	fn := m.queryFn
	m.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(siteURL, q)
}

func (m *mockSCClient) queried() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queryCalls))
	copy(out, m.queryCalls)
	return out
}

// mockAnalyticsClient implements driven.AnalyticsClient.
type mockAnalyticsClient struct {
	properties []driven.PropertySummary
	listErr    error
	reportFn   func(propertyID string, q driven.ReportQuery) ([]driven.ReportRow, error)
}

func (m *mockAnalyticsClient) ListProperties(_ context.Context) ([]driven.PropertySummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.properties, nil
}

func (m *mockAnalyticsClient) RunReport(_ context.Context, propertyID string, q driven.ReportQuery) ([]driven.ReportRow, error) {
	if m.reportFn == nil {
		return nil, nil
	}
	return m.reportFn(propertyID, q)
}

// mockFactory implements driven.ClientFactory, handing out one client per
// account.
type mockFactory struct {
	mu sync.Mutex

	clients   map[string]*mockSCClient
	analytics map[string]*mockAnalyticsClient
	scErr     error
	gaErr     error
	scCalls   int
}

func newMockFactory() *mockFactory {
	return &mockFactory{
		clients:   make(map[string]*mockSCClient),
		analytics: make(map[string]*mockAnalyticsClient),
	}
}

func (f *mockFactory) SearchConsole(_ context.Context, account string) (driven.SearchConsoleClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scCalls++
	if f.scErr != nil {
		return nil, f.scErr
	}
	client, ok := f.clients[account]
	if !ok {
		client = &mockSCClient{}
		f.clients[account] = client
	}
	return client, nil
}

func (f *mockFactory) Analytics(_ context.Context, account string) (driven.AnalyticsClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gaErr != nil {
		return nil, f.gaErr
	}
	client, ok := f.analytics[account]
	if !ok {
		client = &mockAnalyticsClient{}
		f.analytics[account] = client
	}
	return client, nil
}

// noSleep replaces real backoff sleeps in tests and records requested
// durations.
type noSleep struct {
	mu     sync.Mutex
	slept  []time.Duration
	retErr error
}

func (s *noSleep) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	return s.retErr
}
