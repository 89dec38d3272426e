package intake

import (
	"encoding/json"
	"io"
	"time"
)

// ApplicationRequest is an internship application
type ApplicationRequest struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	University         string `json:"university"`
	Major              string `json:"major"`
	GraduationYear     string `json:"graduationYear"`
	GPA                string `json:"gpa,omitempty"`
	CoverLetter        string `json:"coverLetter,omitempty"`
	Availability       string `json:"availability,omitempty"`
	Duration           string `json:"duration,omitempty"`
	LinkedIn           string `json:"linkedin,omitempty"`
	Portfolio          string `json:"portfolio,omitempty"`
	OpportunityID      int64  `json:"opportunityId"`
	OpportunityTitle   string `json:"opportunityTitle"`
	OpportunityCompany string `json:"opportunityCompany"`
	TransactionID      string `json:"transactionId,omitempty"`
	PaymentAmount      string `json:"paymentAmount,omitempty"`
	PaymentDone        bool   `json:"paymentDone"`
	OwnerEmail         string `json:"ownerEmail"`
}

// CareerApplicationRequest is an application to an open position
type CareerApplicationRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location,omitempty"`
	Experience   string `json:"experience,omitempty"`
	Availability string `json:"availability,omitempty"`
	Salary       string `json:"salary,omitempty"`
	CoverLetter  string `json:"coverLetter,omitempty"`
	Portfolio    string `json:"portfolio,omitempty"`
	LinkedIn     string `json:"linkedin,omitempty"`
	GitHub       string `json:"github,omitempty"`
	AgreeToTerms bool   `json:"agreeToTerms"`
	AllowContact bool   `json:"allowContact"`
	JobID        int64  `json:"jobId"`
	JobTitle     string `json:"jobTitle,omitempty"`
	Department   string `json:"department,omitempty"`
}

// ContactRequest is a general inquiry
type ContactRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	InquiryType string `json:"inquiryType"`
}

// SubscriptionRequest is a mailing list sign-up
type SubscriptionRequest struct {
	Email            string   `json:"email"`
	SubscriptionType string   `json:"subscriptionType"`
	Source           string   `json:"source"`
	Interests        []string `json:"interests,omitempty"`
}

// Resume is a PDF attached to a career application. The server rejects
// anything that is not a PDF or is larger than its upload limit.
type Resume struct {
	FileName string
	Content  io.Reader
}

// Submission statuses reported by the server.
const (
	StatusSuccess    = "success"
	StatusPartial    = "partial"
	StatusFailed     = "failed"
	StatusProcessing = "processing"
)

// NotificationStatus is the result of one notification email
type NotificationStatus struct {
	Success   bool   `json:"success"`
	Recipient string `json:"recipient"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SubmissionResponse is returned for every accepted submission, including
// ones whose notification emails failed.
type SubmissionResponse struct {
	Message      string         `json:"message"`
	Success      bool           `json:"success"`
	Status       string         `json:"status"`
	SubmissionID string         `json:"submissionId"`
	Details      map[string]any `json:"details"`
	Timestamp    time.Time      `json:"timestamp"`

	// EmailStatus is keyed by notification name plus "errors". It is absent
	// when emails are sent in the background.
	EmailStatus map[string]json.RawMessage `json:"emailStatus,omitempty"`
}

// Notification decodes the status of the named notification
func (r *SubmissionResponse) Notification(name string) (*NotificationStatus, bool) {
	raw, ok := r.EmailStatus[name]
	if !ok || name == "errors" {
		return nil, false
	}
	var st NotificationStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, false
	}
	return &st, true
}

// ConnectionResponse is the result of a mail transport check
type ConnectionResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationResponse is returned when a single notification is resent
type NotificationResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Result  struct {
		Name      string `json:"name"`
		Role      string `json:"role"`
		Success   bool   `json:"success"`
		MessageID string `json:"messageId,omitempty"`
		Recipient string `json:"recipient,omitempty"`
	} `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// FieldError is one rejected form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
