package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/tribune-news/internal/feeds"
)

type feedItem struct {
	title   string
	link    string
	pubDate string // RFC1123Z; empty omits the element
	desc    string
	content string
}

func rssDoc(items []feedItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">`)
	b.WriteString(`<channel><title>Test Feed</title><link>http://example.com</link><description>t</description>`)
	for _, it := range items {
		b.WriteString("<item>")
		fmt.Fprintf(&b, "<title>%s</title>", it.title)
		fmt.Fprintf(&b, "<link>%s</link>", it.link)
		if it.pubDate != "" {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>", it.pubDate)
		}
		if it.desc != "" {
			fmt.Fprintf(&b, "<description><![CDATA[%s]]></description>", it.desc)
		}
		if it.content != "" {
			fmt.Fprintf(&b, "<content:encoded><![CDATA[%s]]></content:encoded>", it.content)
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

// testRegistry points the Sindh and Sports scopes at the given server.
func testRegistry(t *testing.T, serverURL string) *feeds.Registry {
	t.Helper()

	path := filepath.Join(t.TempDir(), "feeds.yaml")
	data := fmt.Sprintf("regions:\n  Sindh: %s\ncategories:\n  Sports: %s\n", serverURL, serverURL)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	registry := feeds.NewRegistry()
	require.NoError(t, registry.Load(path))
	return registry
}

func newTestIngestor(t *testing.T, serverURL string) *Ingestor {
	t.Helper()
	// Zero politeness delay keeps tests fast; production default is 1s.
	return NewIngestor(testRegistry(t, serverURL), 5*time.Second, 0)
}

func pubDate(t time.Time) string {
	return t.Format(time.RFC1123Z)
}

func TestFetchSortsByPublishTimeDescending(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc([]feedItem{
			{title: "middle", link: "http://e.com/2", pubDate: pubDate(now.Add(-2 * time.Hour)), desc: "d"},
			{title: "oldest", link: "http://e.com/3", pubDate: pubDate(now.Add(-3 * time.Hour)), desc: "d"},
			{title: "newest", link: "http://e.com/1", pubDate: pubDate(now.Add(-1 * time.Hour)), desc: "d"},
		}))
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.False(t, res.Degraded)

	assert.Equal(t, "newest", res.Items[0].Title)
	assert.Equal(t, "middle", res.Items[1].Title)
	assert.Equal(t, "oldest", res.Items[2].Title)
	for i := 1; i < len(res.Items); i++ {
		assert.False(t, res.Items[i-1].Published.Before(res.Items[i].Published),
			"items must be sorted by publish time descending")
	}
}

func TestFetchRecencyCutoff(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc([]feedItem{
			{title: "fresh", link: "http://e.com/1", pubDate: pubDate(now.Add(-24 * time.Hour)), desc: "d"},
			{title: "too old", link: "http://e.com/2", pubDate: pubDate(now.Add(-8 * 24 * time.Hour)), desc: "d"},
		}))
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "fresh", res.Items[0].Title)
}

func TestFetchKeywordFilter(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc([]feedItem{
			{title: "Flood warning issued", link: "http://e.com/1", pubDate: pubDate(now.Add(-1 * time.Hour)), desc: "rivers rising"},
			{title: "Cricket result", link: "http://e.com/2", pubDate: pubDate(now.Add(-2 * time.Hour)), desc: "match report"},
			{title: "Weather update", link: "http://e.com/3", pubDate: pubDate(now.Add(-3 * time.Hour)), content: "severe FLOOD expected in lowlands"},
		}))
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "flood", 7, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 2, "match in title or full content, case-insensitive")
	assert.Equal(t, "Flood warning issued", res.Items[0].Title)
	assert.Equal(t, "Weather update", res.Items[1].Title)
}

func TestFetchTiedTimesKeepFeedOrder(t *testing.T) {
	now := time.Now()
	when := pubDate(now.Add(-1 * time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc([]feedItem{
			{title: "later overall", link: "http://e.com/0", pubDate: pubDate(now.Add(-30 * time.Minute)), desc: "d"},
			{title: "tied first", link: "http://e.com/1", pubDate: when, desc: "d"},
			{title: "tied second", link: "http://e.com/2", pubDate: when, desc: "d"},
			{title: "tied third", link: "http://e.com/3", pubDate: when, desc: "d"},
		}))
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 4)

	assert.Equal(t, "later overall", res.Items[0].Title)
	assert.Equal(t, "tied first", res.Items[1].Title, "equal publish times keep feed order")
	assert.Equal(t, "tied second", res.Items[2].Title)
	assert.Equal(t, "tied third", res.Items[3].Title)
}

func TestFetchDeduplicatesIdenticalEntries(t *testing.T) {
	now := time.Now()
	when := pubDate(now.Add(-1 * time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc([]feedItem{
			{title: "Repeated story", link: "http://e.com/1", pubDate: when, desc: "d"},
			{title: "Repeated story", link: "http://e.com/1b", pubDate: when, desc: "d"},
			{title: "Unique story", link: "http://e.com/2", pubDate: pubDate(now.Add(-2 * time.Hour)), desc: "d"},
		}))
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 2, "identical (title, published) entries collapse to one")
}

func TestFetchCapsAtMaxItems(t *testing.T) {
	now := time.Now()
	var items []feedItem
	for i := 0; i < 8; i++ {
		items = append(items, feedItem{
			title:   fmt.Sprintf("story %d", i),
			link:    fmt.Sprintf("http://e.com/%d", i),
			pubDate: pubDate(now.Add(-time.Duration(i) * time.Hour)),
			desc:    "d",
		})
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc(items))
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Items), 2, "over-fetch must never exceed maxItems in the result")
	assert.Len(t, res.Items, 2)
}

func TestFetchDegradesOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 10)
	require.NoError(t, err, "fetch failures must not surface as errors")
	assert.True(t, res.Degraded)
	assert.NotEmpty(t, res.Reason)
	assert.Empty(t, res.Items)
}

func TestFetchDegradesOnMalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 10)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Empty(t, res.Items)
}

func TestFetchUnknownScopeMakesNoRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	_, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Atlantis", "", 7, 10)
	require.ErrorIs(t, err, feeds.ErrUnknownScope)
	assert.Zero(t, requests, "scope validation must happen before any network call")
}

func TestFetchMissingDateDefaultsToNow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc([]feedItem{
			{title: "undated story", link: "http://e.com/1", desc: "d"},
		}))
	}))
	defer srv.Close()

	before := time.Now().Add(-time.Minute)
	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1, "a missing date is a degradation, not a rejection")
	assert.True(t, res.Items[0].Published.After(before))
}

func TestFetchExtractsImageFromContent(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc([]feedItem{
			{
				title:   "with image",
				link:    "http://e.com/1",
				pubDate: pubDate(now.Add(-1 * time.Hour)),
				content: `<p>lead</p><img src="http://e.com/pic.jpg"/><p>rest</p>`,
			},
		}))
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sindh", "", 7, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "http://e.com/pic.jpg", res.Items[0].Image)
}

func TestFetchCategoryDefaultsToScope(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDoc([]feedItem{
			{title: "match report", link: "http://e.com/1", pubDate: pubDate(now.Add(-1 * time.Hour)), desc: "d"},
		}))
	}))
	defer srv.Close()

	res, err := newTestIngestor(t, srv.URL).Fetch(context.Background(), "Sports", "", 7, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Sports", res.Items[0].Category)
}
