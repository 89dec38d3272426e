// Package ratelimit implements per-key sliding window request budgets.
package ratelimit

import (
	"context"
	"time"
)

// Rule is a request budget over a sliding window
type Rule struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest counted request leaves the window.
	ResetAt time.Time
	// RetryAfter is zero when the request is allowed.
	RetryAfter time.Duration
}

// Limiter counts requests per key. Every request is counted only when it
// is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Decision, error)
}

func decide(allowed bool, count int, oldest, now time.Time, rule Rule) Decision {
	d := Decision{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: max(0, rule.Limit-count),
		ResetAt:   oldest.Add(rule.Window),
	}
	if !allowed {
		d.RetryAfter = max(time.Second, d.ResetAt.Sub(now).Round(time.Second))
	}
	return d
}
