package handler

import (
	"errors"
	"net/http"
	"slices"

	"github.com/hexsyn/intake/internal/middleware"
	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/pipeline"
)

// TestEmailConnection verifies the active mail transport
func (h *Handler) TestEmailConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.mail.Verify(r.Context()); err != nil {
		middleware.GetLogger(r.Context(), h.log).Warn().Err(err).Msg("mail connection test failed")
		resp := map[string]any{
			"success":   false,
			"message":   "Mail connection failed",
			"provider":  h.cfg.Email.Provider,
			"timestamp": now(),
		}
		if h.cfg.App.IsDevelopment() {
			resp["details"] = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Mail connection successful",
		"provider":  h.cfg.Email.Provider,
		"timestamp": now(),
	})
}

// SendNotification sends a single named notification for a submission
// payload, e.g. POST /api/v1/email/contact/adminNotification
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	log := middleware.GetLogger(r.Context(), h.log)

	kind := model.Kind(r.PathValue("kind"))
	name := r.PathValue("notification")
	if !slices.Contains(model.Kinds, kind) {
		writeError(w, http.StatusNotFound, "Not found", "UNKNOWN_KIND", "Unknown submission kind: "+string(kind))
		return
	}

	b, err := h.decoder(false).decode(w, r)
	if err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	res, err := h.intake.Notify(r.Context(), kind, name, b.Fields)
	if err != nil {
		var verr *pipeline.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Validation failed",
				"details": verr.Errors,
			})
		case errors.Is(err, pipeline.ErrUnknownNotification):
			writeError(w, http.StatusNotFound, "Not found", "UNKNOWN_NOTIFICATION", "Unknown notification: "+name)
		default:
			log.Error().Err(err).Str("kind", kind.String()).Str("notification", name).Msg("notification failed")
			h.writeInternalError(w, r, "Failed to send "+name, err)
		}
		return
	}

	if res.Report == nil || len(res.Report.Outcomes) == 0 {
		h.writeInternalError(w, r, "Failed to send "+name, errors.New("no notification outcome"))
		return
	}
	outcome := res.Report.Outcomes[0]
	if !outcome.Success {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     "Failed to send " + name,
			"message":   outcome.Error,
			"timestamp": now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   name + " sent successfully",
		"success":   true,
		"result":    outcome,
		"timestamp": now(),
	})
}
