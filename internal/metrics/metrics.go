package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	DegradedFetches    int64
	ItemsKept          int64
	DuplicatesFiltered int64
	RawCacheHits       int64
	RawCacheMisses     int64
	DetailsCacheHits   int64
	EnrichmentRuns     int64
	SummariesOK        int64
	SummariesFailed    int64
	FallbackSummaries  int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementDegradedFetches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DegradedFetches++
}

func (m *Metrics) AddItemsKept(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsKept += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementRawCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RawCacheHits++
}

func (m *Metrics) IncrementRawCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RawCacheMisses++
}

func (m *Metrics) IncrementDetailsCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DetailsCacheHits++
}

func (m *Metrics) IncrementEnrichmentRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnrichmentRuns++
}

func (m *Metrics) IncrementSummariesOK() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesOK++
}

func (m *Metrics) IncrementSummariesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesFailed++
}

func (m *Metrics) IncrementFallbackSummaries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbackSummaries++
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":       m.FeedsFetched,
		"degraded_fetches":    m.DegradedFetches,
		"items_kept":          m.ItemsKept,
		"duplicates_filtered": m.DuplicatesFiltered,
		"raw_cache_hits":      m.RawCacheHits,
		"raw_cache_misses":    m.RawCacheMisses,
		"details_cache_hits":  m.DetailsCacheHits,
		"enrichment_runs":     m.EnrichmentRuns,
		"summaries_ok":        m.SummariesOK,
		"summaries_failed":    m.SummariesFailed,
		"fallback_summaries":  m.FallbackSummaries,
		"last_run_time":       m.LastRunTime.Format(time.RFC3339),
		"last_error_time":     m.LastErrorTime.Format(time.RFC3339),
		"last_error":          m.LastError,
		"is_healthy":          m.IsHealthy,
	}
}
