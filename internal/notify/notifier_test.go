package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hexsyn/intake/internal/email"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/templates"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg email.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func newNotifier(t *testing.T, mailer Mailer) *Notifier {
	t.Helper()
	reg, err := templates.New("Intake")
	require.NoError(t, err)
	return New(reg, mailer, Config{
		FromName:     "Intake",
		FromAddress:  "noreply@example.com",
		ReplyTo:      "hello@example.com",
		AdminAddress: "admin@example.com",
		SendTimeout:  time.Second,
	}, logger.Nop())
}

func application() *model.Submission {
	return model.NewSubmission(&model.Application{
		FirstName:          "Grace",
		LastName:           "Hopper",
		Email:              "grace@example.com",
		OpportunityTitle:   "Compiler Intern",
		OpportunityCompany: "Navy Labs",
		OwnerEmail:         "owner@example.com",
	}, time.Now())
}

func TestSend_OwnerNotificationCopiesAdmin(t *testing.T) {
	mailer := new(mockMailer)
	sub := application()

	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return assert.ObjectsAreEqual([]string{"owner@example.com"}, msg.To) &&
			assert.ObjectsAreEqual([]string{"admin@example.com"}, msg.CC) &&
			msg.Priority == email.PriorityHigh &&
			msg.ReplyTo == "hello@example.com" &&
			msg.From.Address == "noreply@example.com" &&
			msg.Headers["X-Application-Type"] == "internship-application" &&
			msg.Headers["X-Application-ID"] == sub.ID.String() &&
			msg.Subject == "New Application Received: Compiler Intern - Grace Hopper"
	})).Return("<1@example.com>", nil)

	id, err := newNotifier(t, mailer).Send(context.Background(), model.RoleOwner, "owner@example.com", sub)
	require.NoError(t, err)
	assert.Equal(t, "<1@example.com>", id)
	mailer.AssertExpectations(t)
}

func TestSend_OwnerIsAdminNoCopy(t *testing.T) {
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return len(msg.CC) == 0
	})).Return("<1@example.com>", nil)

	_, err := newNotifier(t, mailer).Send(context.Background(), model.RoleOwner, "Admin@Example.com", application())
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestSend_AdminRepliesToSubmitter(t *testing.T) {
	mailer := new(mockMailer)
	sub := model.NewSubmission(&model.Contact{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Subject:     "Engines",
		Message:     "About the analytical engine.",
		InquiryType: "general",
	}, time.Now())

	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return msg.ReplyTo == "ada@example.com" &&
			msg.Priority == email.PriorityHigh &&
			msg.Headers["X-Contact-Type"] == "contact-form"
	})).Return("<2@example.com>", nil)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return msg.ReplyTo == "hello@example.com" &&
			msg.Priority == email.PriorityNormal &&
			msg.Headers["X-Contact-Type"] == "contact-confirmation"
	})).Return("<3@example.com>", nil)

	n := newNotifier(t, mailer)
	_, err := n.Send(context.Background(), model.RoleAdmin, "admin@example.com", sub)
	require.NoError(t, err)
	_, err = n.Send(context.Background(), model.RoleUser, "ada@example.com", sub)
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestSend_Errors(t *testing.T) {
	tests := []struct {
		name      string
		role      model.Role
		recipient string
		setup     func(m *mockMailer)
		wantIs    error
		wantMsg   string
	}{
		{
			name:      "empty recipient",
			role:      model.RoleOwner,
			recipient: " ",
			setup:     func(m *mockMailer) {},
			wantIs:    ErrNoRecipient,
		},
		{
			name:      "no template for role",
			role:      model.RoleUser,
			recipient: "grace@example.com",
			setup:     func(m *mockMailer) {},
			wantMsg:   "render application user",
		},
		{
			name:      "transport unavailable is preserved",
			role:      model.RoleApplicant,
			recipient: "grace@example.com",
			setup: func(m *mockMailer) {
				m.On("Send", mock.Anything, mock.Anything).
					Return("", fmt.Errorf("%w: missing credentials", email.ErrTransportUnavailable))
			},
			wantIs: email.ErrTransportUnavailable,
		},
		{
			name:      "provider failure",
			role:      model.RoleApplicant,
			recipient: "grace@example.com",
			setup: func(m *mockMailer) {
				m.On("Send", mock.Anything, mock.Anything).Return("", errors.New("421 try later"))
			},
			wantMsg: "Applicant notification failed: 421 try later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := new(mockMailer)
			tt.setup(mailer)

			_, err := newNotifier(t, mailer).Send(context.Background(), tt.role, tt.recipient, application())
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			mailer.AssertExpectations(t)
		})
	}
}

func TestSend_AppliesTimeout(t *testing.T) {
	mailer := new(mockMailer)
	mailer.On("Send", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return("<4@example.com>", nil)

	_, err := newNotifier(t, mailer).Send(context.Background(), model.RoleApplicant, "grace@example.com", application())
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}
