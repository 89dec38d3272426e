package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/hexsyn/intake/internal/middleware"
	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/pipeline"
)

// endpoint is the per-kind response wording of a submission route
type endpoint struct {
	kind      model.Kind
	allowFile bool
	// failure is the message of a generic 500, e.g. "Failed to process contact form".
	failure  string
	messages map[pipeline.Outcome]string
	details  func(sub *model.Submission, res *pipeline.Result) map[string]any
}

var (
	applicationEndpoint = endpoint{
		kind:      model.KindApplication,
		allowFile: true,
		failure:   "Failed to process application",
		messages: map[pipeline.Outcome]string{
			pipeline.OutcomeSuccess:    "Application submitted and emails sent successfully!",
			pipeline.OutcomePartial:    "Application submitted but some emails failed",
			pipeline.OutcomeFailed:     "Application submitted but confirmation emails could not be sent",
			pipeline.OutcomeProcessing: "Application submitted successfully! Confirmation emails are being sent.",
		},
		details: func(sub *model.Submission, _ *pipeline.Result) map[string]any {
			a := sub.Form.(*model.Application)
			d := map[string]any{
				"applicant":   a.Email,
				"owner":       a.OwnerEmail,
				"submittedAt": timestamp(sub.SubmittedAt),
			}
			if sub.Attachment != nil {
				d["resumeUploaded"] = true
				d["resumeLink"] = sub.ResumeLink()
			}
			return d
		},
	}

	careerEndpoint = endpoint{
		kind:      model.KindCareerApplication,
		allowFile: true,
		failure:   "Failed to process career application",
		messages: map[pipeline.Outcome]string{
			pipeline.OutcomeSuccess:    "Career application submitted and emails sent successfully!",
			pipeline.OutcomePartial:    "Career application submitted but some emails failed",
			pipeline.OutcomeFailed:     "Career application submitted but confirmation emails could not be sent",
			pipeline.OutcomeProcessing: "Career application submitted successfully! Confirmation emails are being sent.",
		},
		details: func(sub *model.Submission, res *pipeline.Result) map[string]any {
			c := sub.Form.(*model.CareerApplication)
			emails := "sending"
			if res.Report != nil {
				emails = string(res.Outcome)
			}
			return map[string]any{
				"applicant":      c.SubmitterName(),
				"email":          c.Email,
				"jobTitle":       c.JobTitle,
				"jobId":          c.JobID,
				"resumeUploaded": sub.Attachment != nil,
				"resumeLink":     sub.ResumeLink(),
				"emailsStatus":   emails,
				"submittedAt":    timestamp(sub.SubmittedAt),
			}
		},
	}

	contactEndpoint = endpoint{
		kind:    model.KindContact,
		failure: "Failed to process contact form",
		messages: map[pipeline.Outcome]string{
			pipeline.OutcomeSuccess:    "Contact form submitted and emails sent successfully!",
			pipeline.OutcomePartial:    "Contact form submitted but some emails failed",
			pipeline.OutcomeFailed:     "Contact form submitted but confirmation emails could not be sent",
			pipeline.OutcomeProcessing: "Contact form submitted successfully! We will get back to you soon.",
		},
		details: func(sub *model.Submission, _ *pipeline.Result) map[string]any {
			c := sub.Form.(*model.Contact)
			return map[string]any{
				"name":        c.SubmitterName(),
				"email":       c.Email,
				"subject":     c.Subject,
				"submittedAt": timestamp(sub.SubmittedAt),
			}
		},
	}

	subscriptionEndpoint = endpoint{
		kind:    model.KindSubscription,
		failure: "Failed to process subscription",
		messages: map[pipeline.Outcome]string{
			pipeline.OutcomeSuccess:    "Successfully subscribed and confirmation emails sent!",
			pipeline.OutcomePartial:    "Subscription processed but some emails failed",
			pipeline.OutcomeFailed:     "Subscription processed but confirmation emails could not be sent",
			pipeline.OutcomeProcessing: "Successfully subscribed! Confirmation emails are being sent.",
		},
		details: func(sub *model.Submission, _ *pipeline.Result) map[string]any {
			s := sub.Form.(*model.Subscription)
			return map[string]any{
				"email":            s.Email,
				"subscriptionType": s.SubscriptionType,
				"source":           s.Source,
				"interests":        s.Interests,
				"subscribedAt":     timestamp(sub.SubmittedAt),
				"submittedAt":      timestamp(sub.SubmittedAt),
			}
		},
	}
)

// SubmitApplication handles internship applications
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, applicationEndpoint)
}

// SubmitCareerApplication handles career applications with an optional resume
func (h *Handler) SubmitCareerApplication(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, careerEndpoint)
}

// SubmitContact handles contact form submissions
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, contactEndpoint)
}

// SubmitSubscription handles mailing list sign-ups
func (h *Handler) SubmitSubscription(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, subscriptionEndpoint)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, ep endpoint) {
	log := middleware.GetLogger(r.Context(), h.log)

	b, err := h.decoder(ep.allowFile).decode(w, r)
	if err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	res, err := h.intake.Submit(r.Context(), pipeline.Request{
		Kind:       ep.kind,
		Fields:     b.Fields,
		Attachment: b.Attachment,
	})
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			log.Info().Str("kind", ep.kind.String()).Int("violations", len(verr.Errors)).Msg("submission rejected")
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Validation failed",
				"details": verr.Errors,
			})
			return
		}

		log.Error().Err(err).Str("kind", ep.kind.String()).Msg("submission failed")
		h.writeInternalError(w, r, ep.failure, err)
		return
	}

	writeJSON(w, res.Outcome.HTTPStatus(), submissionResponse(ep, res))
}

func submissionResponse(ep endpoint, res *pipeline.Result) map[string]any {
	resp := map[string]any{
		"message":      ep.messages[res.Outcome],
		"success":      res.Outcome.Succeeded(),
		"status":       res.Outcome,
		"submissionId": res.Submission.ID.String(),
		"details":      ep.details(res.Submission, res),
		"timestamp":    now(),
	}
	if res.Report != nil {
		resp["emailStatus"] = emailStatus(*res.Report)
	}
	return resp
}

// emailStatus keys each notification outcome by name, plus the error list
func emailStatus(report model.DispatchReport) map[string]any {
	status := make(map[string]any, len(report.Outcomes)+1)
	for _, o := range report.Outcomes {
		entry := map[string]any{
			"success":   o.Success,
			"recipient": o.Recipient,
		}
		if o.MessageID != "" {
			entry["messageId"] = o.MessageID
		}
		if o.Error != "" {
			entry["error"] = o.Error
		}
		status[o.Name] = entry
	}
	status["errors"] = report.Errors
	return status
}

func (h *Handler) decoder(allowFile bool) decoder {
	limit := h.cfg.Storage.MaxUploadSize
	if limit <= 0 {
		limit = DefaultMaxUpload
	}
	return decoder{allowFile: allowFile, maxUpload: limit}
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *intakeError
	if errors.As(err, &ie) {
		middleware.GetLogger(r.Context(), h.log).Info().
			Str("code", ie.Code).
			Str("path", r.URL.Path).
			Msg("request body rejected")
		writeError(w, ie.Status, ie.Title, ie.Code, ie.Message)
		return
	}
	h.writeInternalError(w, r, "Failed to read request", err)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
