package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/ratelimit"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, ratelimit.Rule) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis: connection refused")
}

type countingObserver struct {
	limited  map[string]int
	patterns []string
}

func (o *countingObserver) ObserveHTTP(_, path string, _ int, _ time.Duration) {
	o.patterns = append(o.patterns, path)
}

func (o *countingObserver) RateLimited(rule string) {
	if o.limited == nil {
		o.limited = map[string]int{}
	}
	o.limited[rule]++
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Security.RateLimiting = config.RateLimitingConfig{
		Enabled:      true,
		Subscription: config.RateLimitRule{Limit: 10, Window: 15 * time.Minute},
		Career:       config.RateLimitRule{Limit: 100, Window: time.Minute},
	}
	return cfg
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit_EleventhSubscriptionRejected(t *testing.T) {
	cfg := testConfig()
	obs := &countingObserver{}
	m := New(ratelimit.NewMemoryLimiter(), logger.Nop(), cfg, obs)
	h := m.RateLimit(RateLimits(cfg.Security.RateLimiting)["subscription"])(ok)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", nil)
		req.RemoteAddr = ip + ":51000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, send("203.0.113.7").Code, "request %d", i+1)
	}

	rec := send("203.0.113.7")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Too many subscription requests from this IP, please try again later.", body["message"])
	assert.Equal(t, "15 minutes", body["retryAfter"])
	assert.Equal(t, 1, obs.limited["subscription"])

	// Another client is unaffected.
	assert.Equal(t, http.StatusOK, send("198.51.100.1").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	cfg := testConfig()
	m := New(failingLimiter{}, logger.Nop(), cfg, nil)
	h := m.RateLimit(RateLimits(cfg.Security.RateLimiting)["career"])(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/careers/applications", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimiting.Enabled = false
	m := New(failingLimiter{}, logger.Nop(), cfg, nil)
	h := m.RateLimit(RateLimits(cfg.Security.RateLimiting)["subscription"])(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		trusted   []string
		remote    string
		forwarded string
		want      string
	}{
		{name: "no header", remote: "192.0.2.10:4242", want: "192.0.2.10"},
		{name: "header ignored without trusted proxies", remote: "192.0.2.10:4242", forwarded: "203.0.113.9", want: "192.0.2.10"},
		{name: "header ignored from untrusted peer", trusted: []string{"10.0.0.0/8"}, remote: "192.0.2.10:4242", forwarded: "203.0.113.9", want: "192.0.2.10"},
		{name: "trusted peer", trusted: []string{"10.0.0.0/8"}, remote: "10.0.0.2:4242", forwarded: "203.0.113.9", want: "203.0.113.9"},
		{name: "trusted chain skipped", trusted: []string{"10.0.0.0/8"}, remote: "10.0.0.2:4242", forwarded: "203.0.113.9, 10.0.0.1", want: "203.0.113.9"},
		{name: "spoofed leftmost entry ignored", trusted: []string{"10.0.0.2"}, remote: "10.0.0.2:4242", forwarded: "198.51.100.1, 203.0.113.9", want: "203.0.113.9"},
		{name: "garbage hop stops the walk", trusted: []string{"10.0.0.2"}, remote: "10.0.0.2:4242", forwarded: "not-an-ip", want: "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Security.TrustedProxies = tt.trusted
			m := New(nil, logger.Nop(), cfg, nil)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, m.ClientIP(req))
		})
	}
}

func TestRateLimit_RotatingForwardedForDoesNotResetBudget(t *testing.T) {
	cfg := testConfig()
	m := New(ratelimit.NewMemoryLimiter(), logger.Nop(), cfg, nil)
	h := m.RateLimit(RateLimits(cfg.Security.RateLimiting)["subscription"])(ok)

	send := func(i int) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, send(i))
	}
	assert.Equal(t, http.StatusTooManyRequests, send(10))
}

func TestHumanWindow(t *testing.T) {
	tests := map[time.Duration]string{
		15 * time.Minute: "15 minutes",
		time.Minute:      "1 minute",
		time.Hour:        "1 hour",
		90 * time.Second: "90 seconds",
	}
	for d, want := range tests {
		assert.Equal(t, want, humanWindow(d))
	}
}

func TestRecover(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	tests := []struct {
		name        string
		environment string
		wantDetails bool
	}{
		{name: "production hides details", environment: "production"},
		{name: "development shows details", environment: "development", wantDetails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.App.Environment = tt.environment
			m := New(nil, logger.Nop(), cfg, nil)

			rec := httptest.NewRecorder()
			m.Recover(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/contact", nil))

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Internal server error", body["error"])
			if tt.wantDetails {
				assert.Equal(t, "boom", body["details"])
			} else {
				assert.NotContains(t, body, "details")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	m := New(nil, logger.Nop(), testConfig(), nil)

	var seen string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		assert.NotNil(t, GetLogger(r.Context(), nil))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	obs := &countingObserver{}
	m := New(nil, logger.Nop(), testConfig(), obs)

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/contact", ok)
	h := m.Metrics(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/contact", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, []string{"POST /api/v1/contact", "unmatched"}, obs.patterns)
}

func TestCORS(t *testing.T) {
	m := New(nil, logger.Nop(), testConfig(), nil)
	h := m.CORS([]string{"https://example.org"})(ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contact", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/contact", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
