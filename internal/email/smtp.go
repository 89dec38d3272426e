package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// SMTPConfig holds the configuration for the SMTP email sender.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	StartTLS           bool
	InsecureSkipVerify bool
}

// SMTPSender implements Sender over an authenticated SMTP relay. Each send
// opens its own connection so concurrent sends never share protocol state.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer net.Dialer
	now    func() time.Time
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: net.Dialer{Timeout: 10 * time.Second},
		now:    time.Now,
	}, nil
}

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// connect dials the relay, upgrades to TLS and authenticates. The returned
// client is bound to ctx's deadline.
func (s *SMTPSender) connect(ctx context.Context) (*smtp.Client, error) {
	tlsConfig := &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
	}

	var conn net.Conn
	var err error
	if s.cfg.Port == 465 {
		d := tls.Dialer{NetDialer: &s.dialer, Config: tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", s.addr())
	} else {
		conn, err = s.dialer.DialContext(ctx, "tcp", s.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if s.cfg.StartTLS && s.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				client.Close()
				return nil, fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	return client, nil
}

// Send sends an email via SMTP.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	raw, messageID, err := Build(msg, s.now())
	if err != nil {
		return "", err
	}

	client, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.Mail(msg.From.Address); err != nil {
		return "", fmt.Errorf("smtp: MAIL FROM: %w", err)
	}
	for _, rcpt := range msg.Recipients() {
		if err := client.Rcpt(rcpt); err != nil {
			return "", fmt.Errorf("smtp: RCPT TO %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("smtp: DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return "", fmt.Errorf("smtp: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("smtp: finish message: %w", err)
	}

	// The relay has accepted the message once DATA completes.
	_ = client.Quit()
	return messageID, nil
}

// Verify connects and authenticates without sending anything.
func (s *SMTPSender) Verify(ctx context.Context) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Quit()
}
