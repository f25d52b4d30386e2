package news

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/tribune-news/internal/feeds"
	"github.com/deusflow/tribune-news/internal/logger"
	"github.com/deusflow/tribune-news/internal/metrics"
)

// Feed timestamps are interpreted in the publisher's timezone.
const feedTimezone = "Asia/Karachi"

// Ingestor fetches and filters one feed per call. Stateless between calls;
// the only external effect is the network read.
type Ingestor struct {
	registry    *feeds.Registry
	parser      *gofeed.Parser
	fetchCtx    time.Duration
	politeDelay time.Duration
	loc         *time.Location
	now         func() time.Time
}

func NewIngestor(registry *feeds.Registry, fetchTimeout, politeDelay time.Duration) *Ingestor {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: fetchTimeout}

	loc, err := time.LoadLocation(feedTimezone)
	if err != nil {
		// No tzdata available; PKT has no DST so a fixed offset is exact.
		loc = time.FixedZone("PKT", 5*60*60)
	}

	return &Ingestor{
		registry:    registry,
		parser:      parser,
		fetchCtx:    fetchTimeout,
		politeDelay: politeDelay,
		loc:         loc,
		now:         time.Now,
	}
}

// Fetch downloads one feed and returns up to maxItems entries published
// within the last daysBack days, matching query if non-empty, deduplicated
// and sorted by publish time descending. The only error is an unresolvable
// scope; every fetch or parse failure degrades to an empty result.
func (ing *Ingestor) Fetch(ctx context.Context, scope, query string, daysBack, maxItems int) (FetchResult, error) {
	feedURL, err := ing.registry.Resolve(scope)
	if err != nil {
		return FetchResult{}, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, ing.fetchCtx)
	defer cancel()

	feed, err := ing.parser.ParseURLWithContext(feedURL, fetchCtx)
	if err != nil {
		logger.Warn("feed fetch degraded", "scope", scope, "url", feedURL, "error", err)
		metrics.Global.IncrementDegradedFetches()
		return FetchResult{Degraded: true, Reason: err.Error()}, nil
	}
	metrics.Global.IncrementFeedsFetched()
	logger.Debug("raw feed entries", "scope", scope, "count", len(feed.Items))

	now := ing.now().In(ing.loc)
	cutoff := now.Add(-time.Duration(daysBack) * 24 * time.Hour)
	queryLower := strings.ToLower(strings.TrimSpace(query))

	// Over-fetch candidates to survive filtering.
	candidates := feed.Items
	if len(candidates) > 2*maxItems {
		candidates = candidates[:2*maxItems]
	}

	seen := make(map[string]struct{}, len(candidates))
	var items []Item

	for _, entry := range candidates {
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)

		published := now
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.In(ing.loc)
		} else {
			logger.Debug("missing or unparsable date, using fetch time", "scope", scope, "title", title)
		}

		if published.Before(cutoff) {
			continue
		}

		summary := strings.TrimSpace(entry.Description)
		fullContent := strings.TrimSpace(entry.Content)

		category := ""
		if len(entry.Categories) > 0 {
			category = strings.TrimSpace(entry.Categories[0])
		}
		if category == "" && ing.registry.IsCategory(scope) {
			category = scope
		}

		if queryLower != "" &&
			!strings.Contains(strings.ToLower(title), queryLower) &&
			!strings.Contains(strings.ToLower(summary), queryLower) &&
			!strings.Contains(strings.ToLower(fullContent), queryLower) {
			continue
		}

		key := Fingerprint(title, published)
		if _, dup := seen[key]; dup {
			logger.Debug("skipping duplicate", "scope", scope, "title", title)
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seen[key] = struct{}{}

		items = append(items, Item{
			Title:       title,
			Link:        link,
			Image:       itemImage(entry),
			Published:   published,
			Summary:     summary,
			FullContent: fullContent,
			Category:    category,
			SourceFeed:  feedURL,
			FetchedAt:   now,
		})

		if len(items) >= maxItems {
			break
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})

	metrics.Global.AddItemsKept(len(items))

	// Polite delay toward the upstream feed. This is a rate-limit contract,
	// not incidental; keep it on every successful fetch.
	if ing.politeDelay > 0 {
		select {
		case <-time.After(ing.politeDelay):
		case <-ctx.Done():
		}
	}

	return FetchResult{Items: items}, nil
}
