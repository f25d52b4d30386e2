// Package news implements the feed ingestion pipeline: fetch, parse,
// recency/keyword filtering, deduplication and ordering of feed entries.
package news

import "time"

// Item is a single fetched feed entry. Immutable once built; Published is
// always resolvable (missing or unparsable feed dates fall back to the
// fetch time).
type Item struct {
	Title       string
	Link        string
	Image       string // optional
	Published   time.Time
	Summary     string // short feed-provided description, possibly empty
	FullContent string // content:encoded body, possibly empty
	Category    string
	SourceFeed  string
	FetchedAt   time.Time
}

// Detail is an Item augmented with a short generated summary. One Detail per
// surviving Item, same ordering.
type Detail struct {
	Title        string
	Link         string
	Image        string
	Published    time.Time
	BriefSummary string
}

// FetchResult is the outcome of one Ingestor call. Network, HTTP and parse
// failures degrade to an empty item list instead of an error; Degraded and
// Reason record that this happened so callers and tests can tell "no news"
// from "fetch failed".
type FetchResult struct {
	Items    []Item
	Degraded bool
	Reason   string
}
