package pipeline

import (
	"github.com/hexsyn/intake/internal/model"
)

// Notification describes one email sent for a submission kind.
type Notification struct {
	Name      string
	ErrorType string
	Role      model.Role
	// Recipient resolves the address from the submission and the configured
	// admin address.
	Recipient func(sub *model.Submission, admin string) string
}

// KindSpec is the per-kind behaviour of the pipeline.
type KindSpec struct {
	Kind              model.Kind
	AcceptsAttachment bool
	Notifications     []Notification
	// UploadNames returns the owner name and label used to name stored files.
	UploadNames func(form model.Form) (string, string)
}

// Notification looks up a notification by name
func (k KindSpec) Notification(name string) (Notification, bool) {
	for _, n := range k.Notifications {
		if n.Name == name {
			return n, true
		}
	}
	return Notification{}, false
}

func submitter(sub *model.Submission, _ string) string { return sub.Form.SubmitterEmail() }
func admin(_ *model.Submission, admin string) string    { return admin }

var adminNotification = Notification{
	Name:      "adminNotification",
	ErrorType: "admin_notification",
	Role:      model.RoleAdmin,
	Recipient: admin,
}

var userConfirmation = Notification{
	Name:      "userConfirmation",
	ErrorType: "user_confirmation",
	Role:      model.RoleUser,
	Recipient: submitter,
}

var applicantConfirmation = Notification{
	Name:      "applicantConfirmation",
	ErrorType: "applicant_confirmation",
	Role:      model.RoleApplicant,
	Recipient: submitter,
}

// DefaultSpecs returns the behaviour of every submission kind.
func DefaultSpecs() map[model.Kind]KindSpec {
	return map[model.Kind]KindSpec{
		model.KindApplication: {
			Kind:              model.KindApplication,
			AcceptsAttachment: true,
			Notifications: []Notification{
				{
					Name:      "ownerNotification",
					ErrorType: "owner_notification",
					Role:      model.RoleOwner,
					Recipient: func(sub *model.Submission, _ string) string {
						if a, ok := sub.Form.(*model.Application); ok {
							return a.OwnerEmail
						}
						return ""
					},
				},
				applicantConfirmation,
			},
			UploadNames: func(form model.Form) (string, string) {
				a := form.(*model.Application)
				return a.FirstName + "_" + a.LastName, a.OpportunityTitle
			},
		},
		model.KindCareerApplication: {
			Kind:              model.KindCareerApplication,
			AcceptsAttachment: true,
			Notifications:     []Notification{adminNotification, applicantConfirmation},
			UploadNames: func(form model.Form) (string, string) {
				c := form.(*model.CareerApplication)
				label := c.JobTitle
				if label == "" {
					label = "Career_Application"
				}
				return c.FirstName + "_" + c.LastName, label
			},
		},
		model.KindContact: {
			Kind:          model.KindContact,
			Notifications: []Notification{adminNotification, userConfirmation},
		},
		model.KindSubscription: {
			Kind:          model.KindSubscription,
			Notifications: []Notification{adminNotification, userConfirmation},
		},
	}
}
