package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driving"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// DefaultConcurrency bounds in-flight site queries per run. The workload is
// network-bound; the bound exists to respect upstream rate limits, not CPU
// parallelism.
const DefaultConcurrency = 3

// Ensure Fetcher implements the driving port.
var _ driving.Fetcher = (*Fetcher)(nil)

// Fetcher coordinates a multi-site fetch run: site discovery through the
// catalog, domain filtering, bounded-concurrency dispatch of per-site
// queries wrapped in retry, and aggregation of the surviving frames. Sites
// across different accounts are scheduled concurrently; completion order is
// not guaranteed.
type Fetcher struct {
	catalog     driving.SiteCatalog
	factory     driven.ClientFactory
	executor    *Executor
	concurrency int

	// sleep is swappable for tests; used for the optional per-site
	// dispatch delay.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a fetch orchestrator. A non-positive concurrency falls
// back to the default.
func NewFetcher(catalog driving.SiteCatalog, factory driven.ClientFactory, executor *Executor, concurrency int) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Fetcher{
		catalog:     catalog,
		factory:     factory,
		executor:    executor,
		concurrency: concurrency,
		sleep:       sleepCtx,
	}
}

// siteOutcome carries one site's terminal result back to the collector.
type siteOutcome struct {
	site     domain.Site
	frame    domain.Frame
	state    domain.JobState
	attempts int
	err      error
}

// Fetch runs one multi-site query. Failures local to one site never abort
// the run; only an invalid request or a run-level auth failure surfaces as
// an error. The result always carries the per-site outcome breakdown next to
// the aggregated table.
func (f *Fetcher) Fetch(ctx context.Context, req domain.QueryRequest, progress domain.ProgressFunc) (domain.FetchResult, error) {
	if err := req.Validate(); err != nil {
		return domain.FetchResult{}, err
	}

	result := domain.FetchResult{RunID: uuid.NewString()}
	emit := newEmitter(progress)

	sites, err := f.catalog.ListSites(ctx, req.Account, true)
	if err != nil {
		return domain.FetchResult{}, err
	}

	matched := make([]domain.Site, 0, len(sites))
	for _, s := range sites {
		if req.Filter.Matches(s) {
			matched = append(matched, s)
		}
	}
	if !req.Filter.IsZero() {
		logger.Debug("Filtered %d sites to %d matching domain %q",
			len(sites), len(matched), req.Filter.Domain())
	}

	total := len(matched)
	emit.send(domain.ProgressEvent{
		Event:   domain.EventRunStarted,
		Message: fmt.Sprintf("querying %d site(s)", total),
		Total:   total,
	})

	if total == 0 {
		result.Table = Aggregate(nil)
		emit.send(domain.ProgressEvent{
			Event:   domain.EventRunFinished,
			Message: "no matching sites",
			Total:   total,
		})
		return result, nil
	}

	outcomes := make(chan siteOutcome, total)
	sem := make(chan struct{}, f.concurrency)
	var completed atomic.Int32

	var wg sync.WaitGroup
	for account, accountSites := range groupByAccount(matched) {
		wg.Add(1)
		go func(account string, accountSites []domain.Site) {
			defer wg.Done()
			f.runAccount(ctx, account, accountSites, req, sem, outcomes, emit, &completed, total)
		}(account, accountSites)
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	frames := make([]domain.Frame, 0, total)
	for o := range outcomes {
		report := domain.SiteReport{
			SiteURL:    o.site.SiteURL,
			RootDomain: o.site.Domain,
			Account:    o.site.Account,
			State:      o.state,
			Attempts:   o.attempts,
			Rows:       len(o.frame.Rows),
		}
		if o.err != nil {
			report.Error = o.err.Error()
		} else {
			frames = append(frames, o.frame)
		}
		result.Sites = append(result.Sites, report)

		current := int(completed.Add(1))
		emit.send(domain.ProgressEvent{
			Event:      domain.EventSiteFinished,
			Message:    fmt.Sprintf("%s: %s", o.site.SiteURL, o.state),
			Current:    current,
			Total:      total,
			SiteURL:    o.site.SiteURL,
			RootDomain: o.site.Domain,
		})
	}

	result.Table = Aggregate(frames)
	emit.send(domain.ProgressEvent{
		Event:   domain.EventRunFinished,
		Message: fmt.Sprintf("%d rows from %d/%d site(s)", result.Table.Len(), result.Succeeded(), total),
		Current: total,
		Total:   total,
	})
	logger.Info("Fetch complete: %d rows, %d succeeded, %d failed",
		result.Table.Len(), result.Succeeded(), result.Failed())
	return result, nil
}

// runAccount builds one account's client, then fans its sites out under the
// shared semaphore. An account whose client cannot be built marks all its
// sites failed without touching other accounts.
func (f *Fetcher) runAccount(
	ctx context.Context,
	account string,
	sites []domain.Site,
	req domain.QueryRequest,
	sem chan struct{},
	outcomes chan<- siteOutcome,
	emit *emitter,
	completed *atomic.Int32,
	total int,
) {
	client, err := f.factory.SearchConsole(ctx, account)
	if err != nil {
		authErr := fmt.Errorf("%w: account %q: %w", domain.ErrAuth, account, err)
		for _, s := range sites {
			outcomes <- siteOutcome{site: s, state: domain.JobFailed, err: authErr}
		}
		return
	}

	retryer := NewRetryer(req.MaxRetries, req.RetryDelay)

	var wg sync.WaitGroup
	for _, site := range sites {
		wg.Add(1)
		go func(site domain.Site) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomes <- siteOutcome{site: site, state: domain.JobFailed, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			outcomes <- f.runSite(ctx, client, site, req, retryer, emit, completed, total)
		}(site)
	}
	wg.Wait()
}

// runSite executes one site's query under retry, after the optional
// quota-safety delay.
func (f *Fetcher) runSite(
	ctx context.Context,
	client driven.SearchConsoleClient,
	site domain.Site,
	req domain.QueryRequest,
	retryer *Retryer,
	emit *emitter,
	completed *atomic.Int32,
	total int,
) siteOutcome {
	emit.send(domain.ProgressEvent{
		Event:      domain.EventSiteStarted,
		Message:    fmt.Sprintf("querying %s from %s to %s", site.SiteURL, req.StartDate, req.EndDate),
		Current:    int(completed.Load()),
		Total:      total,
		SiteURL:    site.SiteURL,
		RootDomain: site.Domain,
	})

	if req.WaitSeconds > 0 {
		if err := f.sleep(ctx, time.Duration(req.WaitSeconds)*time.Second); err != nil {
			return siteOutcome{site: site, state: domain.JobFailed, err: err}
		}
	}

	var frame domain.Frame
	attempts, err := retryer.Do(ctx, site.SiteURL, func(ctx context.Context) error {
		var runErr error
		frame, runErr = f.executor.Run(ctx, client, site, req)
		return runErr
	})
	if err != nil {
		state := domain.JobFailed
		var qerr *domain.QueryError
		if errors.As(err, &qerr) && qerr.Exhausted {
			state = domain.JobExhausted
		}
		return siteOutcome{site: site, state: state, attempts: attempts, err: err}
	}
	return siteOutcome{site: site, frame: frame, state: domain.JobSucceeded, attempts: attempts}
}

func groupByAccount(sites []domain.Site) map[string][]domain.Site {
	groups := make(map[string][]domain.Site)
	for _, s := range sites {
		groups[s.Account] = append(groups[s.Account], s)
	}
	return groups
}

// emitter is the catch-and-log boundary around the progress callback. A
// listener that errors or panics is reported once per event and otherwise
// ignored; data collection correctness never depends on it.
type emitter struct {
	fn domain.ProgressFunc
}

func newEmitter(fn domain.ProgressFunc) *emitter {
	return &emitter{fn: fn}
}

func (e *emitter) send(ev domain.ProgressEvent) {
	if e.fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Progress callback panicked on %s: %v", ev.Event, r)
		}
	}()
	if err := e.fn(ev); err != nil {
		logger.Warn("Progress callback failed on %s: %v", ev.Event, err)
	}
}
