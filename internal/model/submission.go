package model

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of form being submitted
type Kind string

const (
	KindApplication       Kind = "application"
	KindCareerApplication Kind = "career_application"
	KindContact           Kind = "contact"
	KindSubscription      Kind = "subscription"
)

// Kinds lists every submission kind in a stable order
var Kinds = []Kind{KindApplication, KindCareerApplication, KindContact, KindSubscription}

// String implements fmt.Stringer
func (k Kind) String() string { return string(k) }

// Label returns a human-readable name for the kind
func (k Kind) Label() string {
	switch k {
	case KindApplication:
		return "Application"
	case KindCareerApplication:
		return "Career Application"
	case KindContact:
		return "Contact"
	case KindSubscription:
		return "Subscription"
	default:
		return string(k)
	}
}

// Role identifies who a notification is addressed to
type Role string

const (
	RoleOwner     Role = "owner"
	RoleApplicant Role = "applicant"
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
)

// Form is a validated, typed form payload
type Form interface {
	Kind() Kind
	SubmitterEmail() string
	SubmitterName() string
}

// Submission is a validated form plus the metadata the service assigns to it.
// A Submission only exists after validation has passed.
type Submission struct {
	ID          uuid.UUID
	Kind        Kind
	Form        Form
	SubmittedAt time.Time
	Attachment  *Attachment
	Upload      *UploadResult
}

// NewSubmission wraps a validated form
func NewSubmission(form Form, at time.Time) *Submission {
	return &Submission{
		ID:          uuid.New(),
		Kind:        form.Kind(),
		Form:        form,
		SubmittedAt: at.UTC(),
	}
}

// ResumeLink returns the view link of the stored attachment, or "" when no
// file was stored.
func (s *Submission) ResumeLink() string {
	if s.Upload == nil {
		return ""
	}
	return s.Upload.ViewLink
}

// Attachment is an uploaded file held in memory for the lifetime of a request
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
	// Pages is the page count when the document could be parsed, else 0.
	Pages int
}

// Size returns the attachment size in bytes
func (a *Attachment) Size() int64 {
	return int64(len(a.Data))
}

// UploadResult describes a file stored with a file provider. The zero value
// means the upload did not happen or failed.
type UploadResult struct {
	FileID       string `json:"fileId"`
	FileName     string `json:"fileName"`
	ViewLink     string `json:"viewLink"`
	DownloadLink string `json:"downloadLink"`
}

// Stored reports whether the result refers to a stored file
func (u UploadResult) Stored() bool {
	return u.ViewLink != ""
}
