package middleware

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"time"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/ratelimit"
)

// Observer receives request-level measurements
type Observer interface {
	ObserveHTTP(method, path string, status int, d time.Duration)
	RateLimited(rule string)
}

type nopObserver struct{}

func (nopObserver) ObserveHTTP(string, string, int, time.Duration) {}
func (nopObserver) RateLimited(string)                             {}

// Middleware holds all HTTP middleware
type Middleware struct {
	limiter ratelimit.Limiter
	log     *logger.Logger
	cfg     *config.Config
	obs     Observer
	trusted []netip.Prefix
}

// New creates a new Middleware instance. obs may be nil.
func New(limiter ratelimit.Limiter, log *logger.Logger, cfg *config.Config, obs Observer) *Middleware {
	if obs == nil {
		obs = nopObserver{}
	}
	trusted, err := cfg.Security.TrustedProxyPrefixes()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring trusted proxies: X-Forwarded-For will not be honoured")
		trusted = nil
	}
	return &Middleware{
		limiter: limiter,
		log:     log,
		cfg:     cfg,
		obs:     obs,
		trusted: trusted,
	}
}

// Chain applies middlewares so that the first one listed is the outermost
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
