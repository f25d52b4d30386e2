// Package ratelimit caps the number of summarizer calls per day. A denied
// call is not an error to the caller; enrichment takes the same fallback
// path as a failed call.
package ratelimit

import (
	"sync"
	"time"

	"github.com/deusflow/tribune-news/internal/logger"
)

type Limiter struct {
	mu      sync.Mutex
	max     int // 0 = unlimited
	count   int
	resetAt time.Time
}

func New(max int) *Limiter {
	return &Limiter{
		max:     max,
		resetAt: time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether another summarizer call fits the daily budget and
// counts it if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if l.max > 0 && l.count >= l.max {
		logger.Warn("summarizer budget exhausted", "used", l.count, "max", l.max)
		return false
	}

	l.count++
	return true
}

func (l *Limiter) Stats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]interface{}{
		"summary_calls_used": l.count,
		"summary_calls_max":  l.max,
		"reset_time":         l.resetAt,
	}
}

func (l *Limiter) checkReset() {
	if time.Now().After(l.resetAt) {
		logger.Info("resetting summarizer budget", "used", l.count)
		l.count = 0
		l.resetAt = time.Now().Add(24 * time.Hour)
	}
}
