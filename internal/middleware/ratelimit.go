package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/ratelimit"
)

// RateLimitConfig holds configuration for a specific rate limit
type RateLimitConfig struct {
	// Name prefixes the key and labels rejections.
	Name  string
	Rule  config.RateLimitRule
	// KeyFn defaults to the client IP.
	KeyFn func(*http.Request) string
	// Message is the client-facing rejection text.
	Message string
}

// RateLimits builds the per-route-family limits from configuration
func RateLimits(cfg config.RateLimitingConfig) map[string]RateLimitConfig {
	build := func(name, subject string, rule config.RateLimitRule) RateLimitConfig {
		return RateLimitConfig{
			Name:    name,
			Rule:    rule,
			Message: fmt.Sprintf("Too many %s requests from this IP, please try again later.", subject),
		}
	}
	return map[string]RateLimitConfig{
		"application":  build("application", "application", cfg.Application),
		"career":       build("career", "career application", cfg.Career),
		"contact":      build("contact", "contact", cfg.Contact),
		"subscription": build("subscription", "subscription", cfg.Subscription),
		"email":        build("email", "email", cfg.Email),
	}
}

// RateLimit creates a sliding window rate limiting middleware. Limiter
// errors fail open.
func (m *Middleware) RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	rule := ratelimit.Rule{Limit: cfg.Rule.Limit, Window: cfg.Rule.Window}
	keyFn := cfg.KeyFn
	if keyFn == nil {
		keyFn = m.ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.cfg.Security.RateLimiting.Enabled || m.limiter == nil || rule.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			d, err := m.limiter.Allow(r.Context(), cfg.Name+":"+keyFn(r), rule)
			if err != nil {
				m.log.Error().Err(err).Str("rule", cfg.Name).Msg("failed to check rate limit")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				m.obs.RateLimited(cfg.Name)
				m.log.Warn().
					Str("rule", cfg.Name).
					Str("client_ip", m.ClientIP(r)).
					Dur("retry_after", d.RetryAfter).
					Msg("rate limit exceeded")

				w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())))
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":      "rate_limit_exceeded",
					"message":    cfg.Message,
					"retryAfter": humanWindow(cfg.Rule.Window),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the client address used as the rate limit key.
// X-Forwarded-For is only read when the connection comes from a trusted
// proxy; the rightmost untrusted hop is the client.
func (m *Middleware) ClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !m.isTrusted(addr) {
		return peer
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		a, err := netip.ParseAddr(hop)
		if err != nil {
			break
		}
		client = a.Unmap().String()
		if !m.isTrusted(a) {
			break
		}
	}
	return client
}

func (m *Middleware) isTrusted(a netip.Addr) bool {
	a = a.Unmap()
	for _, p := range m.trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// humanWindow renders a window as "15 minutes", "1 minute", "1 hour"
func humanWindow(d time.Duration) string {
	unit, n := "second", int(d.Round(time.Second)/time.Second)
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		unit, n = "hour", int(d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		unit, n = "minute", int(d/time.Minute)
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}
