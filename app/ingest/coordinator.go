package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/peterc/planetruby/app/config"
	"github.com/peterc/planetruby/app/feed"
	"github.com/peterc/planetruby/app/fetcher"
	"github.com/peterc/planetruby/app/store"
)

// Report is the outcome of one ingestion run: everything the crawl produced
// plus the validator cache to persist for the next run.
type Report struct {
	Items            []store.Item
	Cache            store.ValidatorCache
	OKCount          int
	NotModifiedCount int
	ErrorCount       int
}

// Coordinator fans the feed list out across a fixed-size worker pool. Each
// worker accumulates its items privately; shared state is limited to the feed
// channel and the mutex-guarded cache and counters.
type Coordinator struct {
	client  *fetcher.Client
	parser  *feed.Parser
	workers int
	cutoff  time.Time
}

func NewCoordinator(client *fetcher.Client, parser *feed.Parser, workers int, cutoff time.Time) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		client:  client,
		parser:  parser,
		workers: workers,
		cutoff:  cutoff,
	}
}

// Run processes every feed once. A feed that fails to fetch or parse is
// counted and logged; it never aborts the run or touches other feeds'
// results. There are no retries: a failed feed is simply picked up again on
// the next scheduled run.
func (c *Coordinator) Run(ctx context.Context, feeds []config.Feed, cache store.ValidatorCache) Report {
	queue := make(chan config.Feed, len(feeds))
	for _, f := range feeds {
		queue <- f
	}
	close(queue)

	report := Report{Cache: cache.Clone()}
	accumulators := make([][]store.Item, c.workers)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for f := range queue {
				select {
				case <-ctx.Done():
					return
				default:
				}
				c.processFeed(ctx, f, &report, &accumulators[id], &mu)
			}
		}(i)
	}

	wg.Wait()

	for _, items := range accumulators {
		report.Items = append(report.Items, items...)
	}

	return report
}

func (c *Coordinator) processFeed(ctx context.Context, f config.Feed, report *Report, acc *[]store.Item, mu *sync.Mutex) {
	mu.Lock()
	validators := report.Cache[f.URL]
	mu.Unlock()

	result, err := c.client.Fetch(ctx, f.URL, fetcher.Conditional{
		ETag:         validators.ETag,
		LastModified: validators.LastModified,
	})
	if err != nil {
		slog.Warn("Feed failed", "feed", f.Name, "status", "error", "error", err)
		mu.Lock()
		report.ErrorCount++
		mu.Unlock()
		return
	}

	if result.NotModified {
		slog.Info("Feed skipped", "feed", f.Name, "status", "not modified")
		mu.Lock()
		report.NotModifiedCount++
		mu.Unlock()
		return
	}

	items, _, err := c.parser.Run(result.Body, f.Name, f.URL, c.cutoff)
	if err != nil {
		slog.Warn("Feed failed", "feed", f.Name, "status", "error", "error", err)
		mu.Lock()
		report.ErrorCount++
		mu.Unlock()
		return
	}

	*acc = append(*acc, items...)

	// Validators are only recorded once the document parsed, so a bad
	// response body gets refetched unconditionally next run.
	mu.Lock()
	report.Cache[f.URL] = store.Validators{
		ETag:         result.ETag,
		LastModified: result.LastModified,
	}
	report.OKCount++
	mu.Unlock()

	slog.Info("Feed processed", "feed", f.Name, "status", "ok", "items", len(items))
}
