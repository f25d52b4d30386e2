// Package service is the boundary-facing coordinator: it resolves request
// fingerprints, consults the cache, and drives the ingestor and the
// enrichment orchestrator. The HTTP layer calls into this package with
// already-validated parameters.
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/deusflow/tribune-news/internal/cache"
	"github.com/deusflow/tribune-news/internal/enrich"
	"github.com/deusflow/tribune-news/internal/logger"
	"github.com/deusflow/tribune-news/internal/metrics"
	"github.com/deusflow/tribune-news/internal/news"
)

var (
	// ErrNoData means a fresh fetch produced zero items; retryable with
	// different parameters.
	ErrNoData = errors.New("no recent news found")

	// ErrNoPriorFetch means details were requested before any quick view
	// populated the raw cache for that key.
	ErrNoPriorFetch = errors.New("no cached data; fetch titles first")
)

const (
	rawFetchLimit = 10
	quickTitles   = 3
	maxBrowse     = 50
)

type Fetcher interface {
	Fetch(ctx context.Context, scope, query string, daysBack, maxItems int) (news.FetchResult, error)
}

type Enricher interface {
	Enrich(ctx context.Context, key string, p enrich.Params) error
	EnrichAsync(key string, p enrich.Params)
}

type QuickView struct {
	Titles         []string
	Scope          string
	TotalAvailable int
}

type DetailsView struct {
	Details        []news.Detail
	Scope          string
	TotalAvailable int
}

type BrowseView struct {
	Items          []news.Item
	Category       string
	TotalAvailable int
}

type Coordinator struct {
	cache    *cache.Cache
	fetcher  Fetcher
	enricher Enricher
	flight   singleflight.Group
}

func NewCoordinator(c *cache.Cache, fetcher Fetcher, enricher Enricher) *Coordinator {
	return &Coordinator{
		cache:    c,
		fetcher:  fetcher,
		enricher: enricher,
	}
}

// CacheKey builds the request fingerprint. Two keys are equal iff scope,
// query and daysBack all match exactly.
func CacheKey(scope, query string, daysBack int) string {
	return fmt.Sprintf("%s_%s_%d", scope, query, daysBack)
}

// QuickView returns the top titles for a scope, fetching and caching the raw
// top-10 on a cache miss, and kicks off background enrichment so a later
// details call finds summaries ready.
func (c *Coordinator) QuickView(ctx context.Context, scope, query string, daysBack int) (QuickView, error) {
	key := CacheKey(scope, query, daysBack)

	items, _, fresh, ok := c.cache.GetRaw(key)
	if ok && fresh {
		metrics.Global.IncrementRawCacheHits()
	} else {
		metrics.Global.IncrementRawCacheMisses()
		fetched, err := c.refreshRaw(ctx, key, scope, query, daysBack)
		if err != nil {
			return QuickView{}, err
		}
		items = fetched
	}

	// A cached empty list is still no data; a hit must not turn yesterday's
	// degraded fetch into a success.
	if len(items) == 0 {
		return QuickView{}, fmt.Errorf("%w for scope %q with query %q", ErrNoData, scope, query)
	}

	titles := make([]string, 0, quickTitles)
	for _, item := range items {
		if len(titles) == quickTitles {
			break
		}
		titles = append(titles, item.Title)
	}

	if _, detailsFresh, detailsOK := c.cache.GetDetails(key); !detailsOK || !detailsFresh {
		c.enricher.EnrichAsync(key, enrich.Params{Scope: scope, Query: query, DaysBack: daysBack})
	}

	return QuickView{Titles: titles, Scope: scope, TotalAvailable: len(items)}, nil
}

// refreshRaw invalidates any stale entry and fetches a fresh raw list,
// coalescing concurrent refreshes for the same key into one upstream call.
func (c *Coordinator) refreshRaw(ctx context.Context, key, scope, query string, daysBack int) ([]news.Item, error) {
	v, err, shared := c.flight.Do(key, func() (interface{}, error) {
		c.cache.InvalidateRaw(key)
		res, err := c.fetcher.Fetch(ctx, scope, query, daysBack, rawFetchLimit)
		if err != nil {
			return nil, err
		}
		if res.Degraded {
			logger.Warn("degraded fetch cached as empty", "key", key, "reason", res.Reason)
		}
		c.cache.PutRaw(key, res.Items)
		return res.Items, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("coalesced concurrent refresh", "key", key)
	}
	return v.([]news.Item), nil
}

// Details returns the summarized top-10 for a key. Fresh details are served
// from cache; a fresh raw entry without details triggers synchronous
// enrichment; otherwise the caller must invoke the quick view first. This
// path never fetches upstream on its own.
func (c *Coordinator) Details(ctx context.Context, scope, query string, daysBack int) (DetailsView, error) {
	key := CacheKey(scope, query, daysBack)

	if details, fresh, ok := c.cache.GetDetails(key); ok && fresh {
		metrics.Global.IncrementDetailsCacheHits()
		return DetailsView{Details: details, Scope: scope, TotalAvailable: len(details)}, nil
	}

	if _, _, fresh, ok := c.cache.GetRaw(key); ok && fresh {
		if err := c.enricher.Enrich(ctx, key, enrich.Params{Scope: scope, Query: query, DaysBack: daysBack}); err != nil {
			return DetailsView{}, err
		}
		if details, _, ok := c.cache.GetDetails(key); ok {
			return DetailsView{Details: details, Scope: scope, TotalAvailable: len(details)}, nil
		}
	}

	return DetailsView{}, fmt.Errorf("%w: scope %q", ErrNoPriorFetch, scope)
}

// Browse is a stateless passthrough to the ingestor for category feeds: no
// cache, no summaries, caller-supplied item count clamped to 1..50.
func (c *Coordinator) Browse(ctx context.Context, category, query string, daysBack, maxItems int) (BrowseView, error) {
	if maxItems < 1 {
		maxItems = 1
	}
	if maxItems > maxBrowse {
		maxItems = maxBrowse
	}

	res, err := c.fetcher.Fetch(ctx, category, query, daysBack, maxItems)
	if err != nil {
		return BrowseView{}, err
	}
	if len(res.Items) == 0 {
		return BrowseView{}, fmt.Errorf("%w for category %q with query %q", ErrNoData, category, query)
	}

	return BrowseView{Items: res.Items, Category: category, TotalAvailable: len(res.Items)}, nil
}
