package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hexsyn/intake/internal/logger"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	LoggerKey    contextKey = "logger"
)

// RequestID adds a unique request ID to each request, along with a logger
// carrying it
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check for existing request ID in header
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}

		// Add to context and response header
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, LoggerKey, m.log.WithRequestID(requestID))
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetLogger returns the request-scoped logger, or fallback when the request
// did not pass through RequestID
func GetLogger(ctx context.Context, fallback *logger.Logger) *logger.Logger {
	if l, ok := ctx.Value(LoggerKey).(*logger.Logger); ok {
		return l
	}
	return fallback
}
