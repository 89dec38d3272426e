package pipeline

import (
	"fmt"
	"net/http"

	"github.com/hexsyn/intake/internal/model"
)

// Mode decides whether notification outcomes are part of the response.
type Mode string

const (
	// ModeSync awaits every notification and reports the aggregate outcome.
	ModeSync Mode = "sync"
	// ModeAsync responds as soon as notifications are dispatched; outcomes go
	// to the sink only.
	ModeAsync Mode = "async"
)

// ParseMode validates a configured mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSync, ModeAsync:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown dispatch mode %q", s)
	}
}

// Outcome is the client-facing classification of a submission
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomePartial    Outcome = "partial"
	OutcomeFailed     Outcome = "failed"
	OutcomeProcessing Outcome = "processing"
)

// OutcomeOf classifies an aggregated notification report
func OutcomeOf(r model.DispatchReport) Outcome {
	switch {
	case r.AllSucceeded:
		return OutcomeSuccess
	case r.AnySucceeded:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

// HTTPStatus maps an outcome onto a response status code
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomePartial:
		return http.StatusMultiStatus
	case OutcomeFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// Succeeded reports whether the submission counts as accepted by the client
func (o Outcome) Succeeded() bool {
	return o != OutcomeFailed
}
