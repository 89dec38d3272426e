package pipeline

import (
	"context"

	"github.com/hexsyn/intake/internal/model"
)

// Validator turns raw form values into a typed form. A rejected submission
// yields a validation.FieldErrors error listing every violation.
type Validator interface {
	Validate(kind model.Kind, raw map[string]any) (model.Form, error)
}

// FileUploader stores an attachment with a file provider. ownerName and label
// are used to build a recognisable stored file name.
type FileUploader interface {
	Upload(ctx context.Context, att *model.Attachment, ownerName, label string) (model.UploadResult, error)
}

// RowLogger appends a submission to the spreadsheet log.
type RowLogger interface {
	Append(ctx context.Context, sub *model.Submission) error
}

// EmailSender renders and sends the notification for role to recipient.
type EmailSender interface {
	Send(ctx context.Context, role model.Role, recipient string, sub *model.Submission) (string, error)
}

// Sink receives failures and outcomes that never reach the client.
type Sink interface {
	UploadFailed(sub *model.Submission, err error)
	RowLogged(sub *model.Submission, err error)
	Dispatched(sub *model.Submission, mode Mode, report model.DispatchReport)
	TaskFailed(sub *model.Submission, task string, err error)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) UploadFailed(*model.Submission, error)                    {}
func (NopSink) RowLogged(*model.Submission, error)                       {}
func (NopSink) Dispatched(*model.Submission, Mode, model.DispatchReport) {}
func (NopSink) TaskFailed(*model.Submission, string, error)              {}
