package model

// NotificationOutcome is the settled result of one notification
type NotificationOutcome struct {
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DispatchError names a failed notification
type DispatchError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RowLogOutcome records the spreadsheet append result for operators. It
// never influences the client-facing outcome.
type RowLogOutcome struct {
	Attempted bool
	Success   bool
	Error     string
}

// DispatchReport is the aggregated outcome of a set of notifications
type DispatchReport struct {
	// Outcomes are in declaration order, independent of completion order.
	Outcomes     []NotificationOutcome `json:"outcomes"`
	AllSucceeded bool                  `json:"allSucceeded"`
	AnySucceeded bool                  `json:"anySucceeded"`
	Errors       []DispatchError       `json:"errors"`
	RowLog       *RowLogOutcome        `json:"-"`
}

// Failures maps failed notification names to their error message
func (r DispatchReport) Failures() map[string]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Type] = e.Message
	}
	return out
}
