// Package notify turns submissions into rendered, addressed emails.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/hexsyn/intake/internal/email"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/templates"
)

// ErrNoRecipient is returned when a notification has nowhere to go
var ErrNoRecipient = errors.New("notification has no recipient")

// Renderer renders the email for one kind and role
type Renderer interface {
	Render(kind model.Kind, role model.Role, sub *model.Submission) (templates.Content, error)
}

// Mailer delivers a built message. email.Transport satisfies it.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

// Config holds addressing defaults
type Config struct {
	FromName     string
	FromAddress  string
	ReplyTo      string
	AdminAddress string
	SendTimeout  time.Duration
}

// Notifier renders and sends submission notifications
type Notifier struct {
	renderer Renderer
	mailer   Mailer
	cfg      Config
	log      *logger.Logger
}

// New creates a Notifier
func New(renderer Renderer, mailer Mailer, cfg Config, log *logger.Logger) *Notifier {
	return &Notifier{
		renderer: renderer,
		mailer:   mailer,
		cfg:      cfg,
		log:      log.WithComponent("notify"),
	}
}

// Send renders the notification of role for sub and delivers it to
// recipient, returning the message ID.
func (n *Notifier) Send(ctx context.Context, role model.Role, recipient string, sub *model.Submission) (string, error) {
	if strings.TrimSpace(recipient) == "" {
		return "", fmt.Errorf("%s %s: %w", sub.Kind, role, ErrNoRecipient)
	}

	content, err := n.renderer.Render(sub.Kind, role, sub)
	if err != nil {
		return "", fmt.Errorf("render %s %s: %w", sub.Kind, role, err)
	}

	msg := n.message(role, recipient, sub, content)

	if n.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.SendTimeout)
		defer cancel()
	}

	id, err := n.mailer.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("%s notification failed: %w", roleLabel(role), err)
	}

	n.log.Info().
		Str("kind", sub.Kind.String()).
		Str("role", string(role)).
		Str("submission_id", sub.ID.String()).
		Str("message_id", id).
		Msg("Notification sent")
	return id, nil
}

func (n *Notifier) message(role model.Role, recipient string, sub *model.Submission, content templates.Content) email.Message {
	msg := email.Message{
		From:     mail.Address{Name: n.cfg.FromName, Address: n.cfg.FromAddress},
		To:       []string{recipient},
		ReplyTo:  n.cfg.ReplyTo,
		Subject:  content.Subject,
		HTMLBody: content.HTML,
		TextBody: content.Text,
		Priority: email.PriorityNormal,
		Headers:  headers(sub, role),
	}

	switch role {
	case model.RoleOwner:
		msg.Priority = email.PriorityHigh
		if admin := n.cfg.AdminAddress; admin != "" && !strings.EqualFold(admin, recipient) {
			msg.CC = []string{admin}
		}
	case model.RoleAdmin:
		msg.Priority = email.PriorityHigh
		// Admins answer the submitter directly.
		msg.ReplyTo = sub.Form.SubmitterEmail()
	}
	return msg
}

// headers tags messages so mail rules can route them
func headers(sub *model.Submission, role model.Role) map[string]string {
	internal := role == model.RoleOwner || role == model.RoleAdmin
	id := sub.ID.String()

	switch sub.Kind {
	case model.KindApplication:
		kind := "application-confirmation"
		if internal {
			kind = "internship-application"
		}
		return map[string]string{"X-Application-Type": kind, "X-Application-ID": id}
	case model.KindCareerApplication:
		kind := "career-application-confirmation"
		if internal {
			kind = "career-application"
		}
		return map[string]string{"X-Application-Type": kind, "X-Application-ID": id}
	case model.KindContact:
		kind := "contact-confirmation"
		if internal {
			kind = "contact-form"
		}
		return map[string]string{"X-Contact-Type": kind, "X-Contact-ID": id}
	case model.KindSubscription:
		kind := "subscription-confirmation"
		if internal {
			kind = "subscription-notification"
		}
		return map[string]string{"X-Subscription-Type": kind, "X-Subscription-ID": id}
	default:
		return nil
	}
}

func roleLabel(role model.Role) string {
	switch role {
	case model.RoleOwner:
		return "Owner"
	case model.RoleApplicant:
		return "Applicant"
	case model.RoleAdmin:
		return "Admin"
	default:
		return "User"
	}
}
