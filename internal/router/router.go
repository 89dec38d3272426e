package router

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/handler"
	"github.com/hexsyn/intake/internal/middleware"
)

// New creates and configures the HTTP router. metrics may be nil when
// exposition is disabled.
func New(h *handler.Handler, mw *middleware.Middleware, cfg *config.Config, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	if metrics != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, metrics)
	}

	mux.HandleFunc("GET /api/v1/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Intake API v1","version":"` + handler.Version + `"}`))
	})

	limits := middleware.RateLimits(cfg.Security.RateLimiting)
	limited := func(rule string, fn http.HandlerFunc) http.Handler {
		return mw.RateLimit(limits[rule])(fn)
	}

	// Submissions
	mux.Handle("POST /api/v1/applications", limited("application", h.SubmitApplication))
	mux.Handle("POST /api/v1/careers/applications", limited("career", h.SubmitCareerApplication))
	mux.Handle("POST /api/v1/contact", limited("contact", h.SubmitContact))
	mux.Handle("POST /api/v1/subscriptions", limited("subscription", h.SubmitSubscription))

	// Email operations
	mux.Handle("GET /api/v1/email/test-connection", limited("email", h.TestEmailConnection))
	mux.Handle("POST /api/v1/email/{kind}/{notification}", limited("email", h.SendNotification))

	// Apply middleware stack, outermost first. Metrics wraps the mux
	// directly so it sees the matched route pattern.
	handler := middleware.Chain(mux,
		mw.Recover,
		mw.RequestID,
		mw.Logger,
		mw.SecurityHeaders,
		mw.CORS(cfg.Server.CORSOrigins),
		mw.Metrics,
	)

	return otelhttp.NewHandler(handler, "intake",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
