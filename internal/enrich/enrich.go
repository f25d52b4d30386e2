// Package enrich turns cached raw item lists into summarized detail lists.
// Summarization fans out per item and tolerates individual failures; the
// assembled list lands in the cache as one atomic write.
package enrich

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/deusflow/tribune-news/internal/cache"
	"github.com/deusflow/tribune-news/internal/logger"
	"github.com/deusflow/tribune-news/internal/metrics"
	"github.com/deusflow/tribune-news/internal/news"
	"github.com/deusflow/tribune-news/internal/ratelimit"
	"github.com/deusflow/tribune-news/internal/retry"
)

const (
	// How many raw items one key holds; the original fetches its top 10.
	rawFetchLimit = 10
	// Summarizer input cap, in runes.
	summaryInputLimit = 2000
	// Brief summary cap, in runes.
	briefSummaryLimit = 300
)

// Summarizer is the opaque external summarization call. It may fail or be
// slow; no other contract is assumed.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// Fetcher re-fetches raw items when a key's cached list went stale.
// Implemented by news.Ingestor.
type Fetcher interface {
	Fetch(ctx context.Context, scope, query string, daysBack, maxItems int) (news.FetchResult, error)
}

// Params are the request parameters a cache key was built from; enrichment
// needs them to re-fetch raw items with the same fingerprint.
type Params struct {
	Scope    string
	Query    string
	DaysBack int
}

type Orchestrator struct {
	cache      *cache.Cache
	fetcher    Fetcher
	summarizer Summarizer
	limiter    *ratelimit.Limiter

	group       singleflight.Group
	concurrency int
	callTimeout time.Duration
	retryCfg    retry.Config
}

func NewOrchestrator(c *cache.Cache, fetcher Fetcher, summarizer Summarizer, limiter *ratelimit.Limiter,
	concurrency int, callTimeout time.Duration, retryCfg retry.Config) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		cache:       c,
		fetcher:     fetcher,
		summarizer:  summarizer,
		limiter:     limiter,
		concurrency: concurrency,
		callTimeout: callTimeout,
		retryCfg:    retryCfg,
	}
}

// Enrich builds the details entry for key. Idempotent per key within the
// cache TTL window: a fresh details entry makes it a no-op, and concurrent
// calls for the same key collapse into one run.
func (o *Orchestrator) Enrich(ctx context.Context, key string, p Params) error {
	_, err, _ := o.group.Do(key, func() (interface{}, error) {
		return nil, o.run(ctx, key, p)
	})
	return err
}

// EnrichAsync runs Enrich on a supervised background goroutine: failures are
// logged and recorded, never silently dropped, and a panic cannot take the
// process down.
func (o *Orchestrator) EnrichAsync(key string, p Params) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("enrichment panicked", "key", key, "panic", r)
				metrics.Global.SetError("enrichment panic")
			}
		}()

		if err := o.Enrich(context.Background(), key, p); err != nil {
			logger.Error("background enrichment failed", "key", key, "error", err)
			metrics.Global.SetError(err.Error())
		}
	}()
}

func (o *Orchestrator) run(ctx context.Context, key string, p Params) error {
	if _, fresh, ok := o.cache.GetDetails(key); ok && fresh {
		return nil // already enriched
	}

	// Snapshot items and epoch in one read; re-reading the epoch later could
	// pick up a concurrently refreshed list and misattribute the summaries.
	items, rawStoredAt, fresh, ok := o.cache.GetRaw(key)
	if !ok || !fresh {
		o.cache.InvalidateRaw(key)
		res, err := o.fetcher.Fetch(ctx, p.Scope, p.Query, p.DaysBack, rawFetchLimit)
		if err != nil {
			return err
		}
		items = res.Items
		rawStoredAt = o.cache.PutRaw(key, items)
	}

	if len(items) == 0 {
		return nil // nothing to enrich
	}

	metrics.Global.IncrementEnrichmentRuns()
	logger.Info("enriching", "key", key, "items", len(items))

	// Fan out one summarizer call per item, fan in when every outcome is
	// known. Failures never abort the batch; completion order is irrelevant
	// because each goroutine writes its own slot.
	summaries := make([]string, len(items))
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(i int, item news.Item) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			summaries[i] = o.summarizeItem(ctx, item)
		}(i, item)
	}
	wg.Wait()

	details := make([]news.Detail, len(items))
	for i, item := range items {
		details[i] = news.Detail{
			Title:        item.Title,
			Link:         item.Link,
			Image:        item.Image,
			Published:    item.Published,
			BriefSummary: summaries[i],
		}
	}

	if !o.cache.PutDetailsIf(key, details, rawStoredAt) {
		logger.Warn("raw entry superseded during enrichment, dropping result", "key", key)
		return nil
	}

	metrics.Global.SetLastRun()
	return nil
}

// summarizeItem always yields a usable summary: the summarizer's output
// capped at the brief limit, or the leading slice of the item's own content
// when the call fails or the budget is exhausted.
func (o *Orchestrator) summarizeItem(ctx context.Context, item news.Item) string {
	content := item.FullContent
	if content == "" {
		content = item.Summary
	}
	input := truncateRunes(content, summaryInputLimit)

	if o.limiter != nil && !o.limiter.Allow() {
		metrics.Global.IncrementFallbackSummaries()
		return truncateRunes(content, briefSummaryLimit)
	}

	var summary string
	err := retry.WithRetry(ctx, o.retryCfg, func() error {
		callCtx := ctx
		if o.callTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, o.callTimeout)
			defer cancel()
		}
		s, err := o.summarizer.Summarize(callCtx, input)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err != nil {
		logger.Warn("summarization failed, using content fallback", "title", item.Title, "error", err)
		metrics.Global.IncrementSummariesFailed()
		return truncateRunes(content, briefSummaryLimit)
	}

	metrics.Global.IncrementSummariesOK()
	if utf8.RuneCountInString(summary) > briefSummaryLimit {
		return truncateRunes(summary, briefSummaryLimit) + "..."
	}
	return summary
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
