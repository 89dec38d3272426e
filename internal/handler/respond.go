package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hexsyn/intake/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a client error. code is the machine-readable reason.
func writeError(w http.ResponseWriter, status int, title, code, message string) {
	writeJSON(w, status, map[string]any{
		"error":     title,
		"code":      code,
		"message":   message,
		"timestamp": now(),
	})
}

// writeInternalError hides err from clients outside development
func (h *Handler) writeInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	resp := map[string]any{
		"error":     "Internal server error",
		"message":   message,
		"timestamp": now(),
	}
	if h.cfg.App.IsDevelopment() && err != nil {
		resp["details"] = err.Error()
	}
	if reqID := middleware.GetRequestID(r.Context()); reqID != "" {
		resp["requestId"] = reqID
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
