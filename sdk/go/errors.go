package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoResume is returned when a resume is given without content.
var ErrNoResume = errors.New("intake: resume has no content")

// APIError represents an error response from the intake API.
type APIError struct {
	StatusCode int          `json:"-"`
	Title      string       `json:"error"`
	Code       string       `json:"code,omitempty"`
	Message    string       `json:"message,omitempty"`
	Details    []FieldError `json:"-"`
	RetryAfter string       `json:"retryAfter,omitempty"`
	RequestID  string       `json:"requestId,omitempty"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "intake: API error %d", e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	switch {
	case e.Message != "":
		fmt.Fprintf(&b, ": %s", e.Message)
	case e.Title != "":
		fmt.Fprintf(&b, ": %s", e.Title)
	}
	for _, d := range e.Details {
		fmt.Fprintf(&b, "; %s: %s", d.Field, d.Message)
	}
	return b.String()
}

// RateLimited reports whether the request was rejected by a rate limit.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// apiErrorBody matches every error shape the API returns. Validation
// failures carry a field list in details, internal errors a string.
type apiErrorBody struct {
	APIError
	Details json.RawMessage `json:"details"`
}

func parseAPIError(statusCode int, body []byte) error {
	var raw apiErrorBody
	if err := json.Unmarshal(body, &raw); err == nil && raw.Title != "" {
		apiErr := raw.APIError
		apiErr.StatusCode = statusCode
		if len(raw.Details) > 0 {
			var fields []FieldError
			var detail string
			switch {
			case json.Unmarshal(raw.Details, &fields) == nil:
				apiErr.Details = fields
			case json.Unmarshal(raw.Details, &detail) == nil && apiErr.Message == "":
				apiErr.Message = detail
			}
		}
		return &apiErr
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       "unknown",
		Message:    string(body),
	}
}

// IsAPIError checks whether err is an APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
