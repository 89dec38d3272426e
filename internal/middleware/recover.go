package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"
)

// Recover recovers from panics and logs the error
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				m.log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("request_id", GetRequestID(r.Context())).
					Msg("panic recovered")

				body := map[string]any{
					"error":     "Internal server error",
					"message":   "An unexpected error occurred",
					"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
				}
				if m.cfg.App.IsDevelopment() {
					body["details"] = fmt.Sprint(err)
				}
				writeJSON(w, http.StatusInternalServerError, body)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
