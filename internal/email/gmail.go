package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig holds the configuration for the Gmail email sender.
type GmailConfig struct {
	// CredentialsJSON is the service account credentials JSON with
	// domain-wide delegation for SenderAddress.
	CredentialsJSON []byte
	// SenderAddress is the mailbox the service account impersonates.
	SenderAddress string
}

// GmailSender implements Sender using the Gmail API.
type GmailSender struct {
	service       *gmail.Service
	senderAddress string
	now           func() time.Time
}

// NewGmailSender creates a new GmailSender.
func NewGmailSender(ctx context.Context, cfg GmailConfig) (*GmailSender, error) {
	if len(cfg.CredentialsJSON) == 0 {
		return nil, fmt.Errorf("gmail: credentials JSON is required")
	}
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("gmail: sender address is required")
	}

	jwtConfig, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to parse credentials: %w", err)
	}

	// Impersonate the sender mailbox through domain-wide delegation
	jwtConfig.Subject = cfg.SenderAddress

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSender{
		service:       svc,
		senderAddress: cfg.SenderAddress,
		now:           time.Now,
	}, nil
}

// Send sends an email via the Gmail API and returns the Gmail message ID.
func (g *GmailSender) Send(ctx context.Context, msg Message) (string, error) {
	if msg.From.Address == "" {
		msg.From.Address = g.senderAddress
	}

	raw, _, err := Build(msg, g.now())
	if err != nil {
		return "", err
	}

	sent, err := g.service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail: failed to send email: %w", err)
	}

	return sent.Id, nil
}

// Verify fetches the sender profile, which exercises the token exchange.
func (g *GmailSender) Verify(ctx context.Context) error {
	if _, err := g.service.Users.GetProfile("me").Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail: failed to fetch profile: %w", err)
	}
	return nil
}
