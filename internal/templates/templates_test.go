package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexsyn/intake/internal/model"
)

func submission(form model.Form) *model.Submission {
	return model.NewSubmission(form, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestNew_RegistersEveryKindAndRole(t *testing.T) {
	reg, err := New("Intake")
	require.NoError(t, err)

	pairs := []struct {
		kind model.Kind
		role model.Role
	}{
		{model.KindApplication, model.RoleOwner},
		{model.KindApplication, model.RoleApplicant},
		{model.KindCareerApplication, model.RoleAdmin},
		{model.KindCareerApplication, model.RoleApplicant},
		{model.KindContact, model.RoleAdmin},
		{model.KindContact, model.RoleUser},
		{model.KindSubscription, model.RoleAdmin},
		{model.KindSubscription, model.RoleUser},
	}
	for _, p := range pairs {
		_, ok := reg.Lookup(p.kind, p.role)
		assert.True(t, ok, "%s/%s", p.kind, p.role)
	}

	_, ok := reg.Lookup(model.KindContact, model.RoleOwner)
	assert.False(t, ok)
}

func TestRender_ApplicationOwner(t *testing.T) {
	reg, err := New("Intake")
	require.NoError(t, err)

	sub := submission(&model.Application{
		FirstName:          "Grace",
		LastName:           "Hopper",
		Email:              "grace@example.com",
		OpportunityTitle:   "Compiler Intern",
		OpportunityCompany: "Navy Labs",
		CoverLetter:        "I <3 compilers",
	})
	sub.Upload = &model.UploadResult{ViewLink: "https://drive.example.com/view/1"}

	out, err := reg.Render(model.KindApplication, model.RoleOwner, sub)
	require.NoError(t, err)

	assert.Equal(t, "New Application Received: Compiler Intern - Grace Hopper", out.Subject)
	assert.Contains(t, out.HTML, "https://drive.example.com/view/1")
	assert.Contains(t, out.HTML, "I &lt;3 compilers")
	assert.Contains(t, out.Text, "Resume: https://drive.example.com/view/1")
	assert.Contains(t, out.Text, "I <3 compilers")
	assert.Contains(t, out.HTML, sub.ID.String())
}

func TestRender_CareerAdminWithoutResume(t *testing.T) {
	reg, err := New("Intake")
	require.NoError(t, err)

	out, err := reg.Render(model.KindCareerApplication, model.RoleAdmin, submission(&model.CareerApplication{
		FirstName: "Alan",
		LastName:  "Turing",
		Email:     "alan@example.com",
		JobID:     7,
	}))
	require.NoError(t, err)

	assert.Equal(t, "New Career Application: Alan Turing - Job #7", out.Subject)
	assert.Contains(t, out.Text, "Resume: Not provided")
}

func TestRender_ContactAndSubscriptionLabels(t *testing.T) {
	reg, err := New("Intake")
	require.NoError(t, err)

	contact, err := reg.Render(model.KindContact, model.RoleAdmin, submission(&model.Contact{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Subject:     "Engines",
		Message:     "About the analytical engine.",
		InquiryType: "media",
	}))
	require.NoError(t, err)
	assert.Equal(t, "New Contact Form Submission: Engines", contact.Subject)
	assert.Contains(t, contact.Text, "Inquiry type: Media & Press")

	sub, err := reg.Render(model.KindSubscription, model.RoleUser, submission(&model.Subscription{
		Email:            "sub@example.com",
		SubscriptionType: "newsletter",
		Source:           "footer",
		Interests:        []string{"events", "new_features"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Intake Updates - Subscription Confirmed!", sub.Subject)
	assert.Contains(t, sub.Text, "- Events\n- New Features")
}

func TestRender_UnknownPair(t *testing.T) {
	reg, err := New("Intake")
	require.NoError(t, err)

	_, err = reg.Render(model.KindSubscription, model.RoleOwner, submission(&model.Subscription{}))
	assert.Error(t, err)
}
