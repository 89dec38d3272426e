package handler

import (
	"net/http"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// Health returns the health status of the service
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services := make(map[string]string, len(h.deps))
	status := "healthy"
	for _, d := range h.deps {
		if err := d.HealthCheck(ctx); err != nil {
			services[d.Name()] = "unhealthy"
			status = "degraded"
			continue
		}
		services[d.Name()] = "healthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:   status,
		Version:  Version,
		Services: services,
	})
}

// Ready returns whether the service is ready to accept requests
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	for _, d := range h.deps {
		if err := d.HealthCheck(ctx); err != nil {
			http.Error(w, d.Name()+" not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
