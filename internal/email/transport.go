package email

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/logger"
)

// ErrTransportUnavailable is returned by Transport.Send when no provider
// could be constructed.
var ErrTransportUnavailable = errors.New("email: transport unavailable")

// Factory builds a provider from configuration.
type Factory func(ctx context.Context) (Sender, error)

// Transport owns the active mail provider. It is built once at startup and
// rebuilt only through Reset; a failed build is remembered and surfaced on
// every send until the next successful Reset.
type Transport struct {
	factory       Factory
	verifyTimeout time.Duration
	log           *logger.Logger

	mu      sync.RWMutex
	sender  Sender
	initErr error
}

// NewTransport builds the initial provider. A construction failure does not
// fail startup; it makes the transport unavailable.
func NewTransport(ctx context.Context, factory Factory, verifyTimeout time.Duration, log *logger.Logger) *Transport {
	t := &Transport{
		factory:       factory,
		verifyTimeout: verifyTimeout,
		log:           log.WithComponent("email"),
	}
	if err := t.Reset(ctx); err != nil {
		t.log.Error().Err(err).Msg("mail transport unavailable")
	}
	return t
}

// Reset rebuilds the provider. On failure a previously working provider is
// kept.
func (t *Transport) Reset(ctx context.Context) error {
	sender, err := t.factory(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		if t.sender == nil {
			t.initErr = err
		}
		return fmt.Errorf("rebuild mail transport: %w", err)
	}

	t.sender = sender
	t.initErr = nil
	t.log.Info().Msg("mail transport ready")
	return nil
}

func (t *Transport) current() (Sender, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.sender == nil {
		if t.initErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransportUnavailable, t.initErr)
		}
		return nil, ErrTransportUnavailable
	}
	return t.sender, nil
}

// Send delivers msg through the active provider.
func (t *Transport) Send(ctx context.Context, msg Message) (string, error) {
	sender, err := t.current()
	if err != nil {
		return "", err
	}
	return sender.Send(ctx, msg)
}

// Verify checks connectivity of the active provider within the verify timeout.
func (t *Transport) Verify(ctx context.Context) error {
	sender, err := t.current()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, t.verifyTimeout)
	defer cancel()

	if err := sender.Verify(ctx); err != nil {
		return fmt.Errorf("verify mail transport: %w", err)
	}
	return nil
}

// NewFactory returns a Factory for the configured provider. googleCredentials
// is the shared service account, used by the gmail provider when no
// dedicated credentials are configured.
func NewFactory(cfg config.EmailConfig, googleCredentials []byte) Factory {
	return func(ctx context.Context) (Sender, error) {
		switch cfg.Provider {
		case "smtp":
			s, err := NewSMTPSender(SMTPConfig{
				Host:               cfg.SMTP.Host,
				Port:               cfg.SMTP.Port,
				Username:           cfg.SMTP.Username,
				Password:           cfg.SMTP.Password,
				StartTLS:           cfg.SMTP.StartTLS,
				InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
			})
			if err != nil {
				return nil, err
			}
			return s, nil
		case "gmail":
			creds := []byte(cfg.Gmail.CredentialsJSON)
			if len(creds) == 0 {
				creds = googleCredentials
			}
			s, err := NewGmailSender(ctx, GmailConfig{
				CredentialsJSON: creds,
				SenderAddress:   cfg.FromAddress,
			})
			if err != nil {
				return nil, err
			}
			return s, nil
		case "ses":
			s, err := NewSESSender(ctx, cfg.SES.Region)
			if err != nil {
				return nil, err
			}
			return s, nil
		default:
			return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
		}
	}
}
