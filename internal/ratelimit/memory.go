package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-process sliding log for deployments without Redis
type MemoryLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewMemoryLimiter creates a MemoryLimiter
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{hits: make(map[string][]time.Time), now: time.Now}
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(_ context.Context, key string, rule Rule) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := trim(l.hits[key], now.Add(-rule.Window))
	allowed := len(hits) < rule.Limit
	if allowed {
		hits = append(hits, now)
	}

	if len(hits) == 0 {
		delete(l.hits, key)
		return decide(allowed, 0, now, now, rule), nil
	}
	l.hits[key] = hits
	return decide(allowed, len(hits), hits[0], now, rule), nil
}

// Sweep drops keys whose every hit is older than window
func (l *MemoryLimiter) Sweep(window time.Duration) {
	cutoff := l.now().Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, hits := range l.hits {
		if hits = trim(hits, cutoff); len(hits) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = hits
		}
	}
}

// Run sweeps every interval until ctx is done
func (l *MemoryLimiter) Run(ctx context.Context, interval, window time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(window)
		}
	}
}

// trim drops hits at or before cutoff; hits are in ascending order
func trim(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
