package email

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/logger"
)

func TestBuild_MultipartAlternative(t *testing.T) {
	msg := Message{
		From:     mail.Address{Name: "Intake", Address: "noreply@example.com"},
		To:       []string{"owner@example.com"},
		CC:       []string{"admin@example.com"},
		ReplyTo:  "applicant@example.com",
		Subject:  "New application: Compiler Intern",
		HTMLBody: "<p>Hello</p>",
		TextBody: "Hello",
		Priority: PriorityHigh,
		Headers:  map[string]string{"X-Application-Type": "application"},
	}

	raw, id, err := Build(msg, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	out := string(raw)
	assert.True(t, strings.HasPrefix(id, "<"))
	assert.True(t, strings.HasSuffix(id, "@example.com>"))
	assert.Contains(t, out, "Message-ID: "+id+"\r\n")
	assert.Contains(t, out, "To: owner@example.com\r\n")
	assert.Contains(t, out, "Cc: admin@example.com\r\n")
	assert.Contains(t, out, "Reply-To: applicant@example.com\r\n")
	assert.Contains(t, out, "X-Priority: 1\r\n")
	assert.Contains(t, out, "X-Application-Type: application\r\n")
	assert.Contains(t, out, "multipart/alternative")
	assert.Contains(t, out, "text/plain; charset=UTF-8")
	assert.Contains(t, out, "text/html; charset=UTF-8")
}

func TestBuild_RequiresRecipient(t *testing.T) {
	_, _, err := Build(Message{Subject: "x", TextBody: "y"}, time.Now())
	assert.Error(t, err)
}

func TestBuild_EncodesNonASCIISubject(t *testing.T) {
	raw, _, err := Build(Message{
		From:     mail.Address{Address: "a@example.com"},
		To:       []string{"b@example.com"},
		Subject:  "Café inquiry",
		TextBody: "hi",
	}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: =?utf-8?q?")
}

func TestMessage_Recipients(t *testing.T) {
	m := Message{To: []string{"a@example.com"}, CC: []string{"b@example.com"}}
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, m.Recipients())
}

type fakeSender struct {
	id        string
	verifyErr error
}

func (f *fakeSender) Send(context.Context, Message) (string, error) { return f.id, nil }
func (f *fakeSender) Verify(context.Context) error                   { return f.verifyErr }

func TestTransport_UnavailableWhenConstructionFails(t *testing.T) {
	tr := NewTransport(context.Background(), func(context.Context) (Sender, error) {
		return nil, errors.New("bad credentials")
	}, time.Second, logger.Nop())

	_, err := tr.Send(context.Background(), Message{To: []string{"x@example.com"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransportUnavailable)
	assert.Contains(t, err.Error(), "bad credentials")

	assert.ErrorIs(t, tr.Verify(context.Background()), ErrTransportUnavailable)
}

func TestTransport_ResetRecovers(t *testing.T) {
	var calls atomic.Int32
	tr := NewTransport(context.Background(), func(context.Context) (Sender, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("relay down")
		}
		return &fakeSender{id: "<id@example.com>"}, nil
	}, time.Second, logger.Nop())

	_, err := tr.Send(context.Background(), Message{})
	require.ErrorIs(t, err, ErrTransportUnavailable)

	require.NoError(t, tr.Reset(context.Background()))

	id, err := tr.Send(context.Background(), Message{})
	require.NoError(t, err)
	assert.Equal(t, "<id@example.com>", id)
}

func TestTransport_FailedResetKeepsWorkingSender(t *testing.T) {
	var calls atomic.Int32
	tr := NewTransport(context.Background(), func(context.Context) (Sender, error) {
		if calls.Add(1) == 1 {
			return &fakeSender{id: "first"}, nil
		}
		return nil, errors.New("relay down")
	}, time.Second, logger.Nop())

	require.Error(t, tr.Reset(context.Background()))

	id, err := tr.Send(context.Background(), Message{})
	require.NoError(t, err)
	assert.Equal(t, "first", id)
}

func TestTransport_VerifyWrapsProviderError(t *testing.T) {
	tr := NewTransport(context.Background(), func(context.Context) (Sender, error) {
		return &fakeSender{verifyErr: errors.New("auth rejected")}, nil
	}, time.Second, logger.Nop())

	err := tr.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth rejected")
	assert.NotErrorIs(t, err, ErrTransportUnavailable)
}

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmailConfig
		wantErr string
	}{
		{
			name: "smtp",
			cfg:  config.EmailConfig{Provider: "smtp", SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587}},
		},
		{
			name:    "smtp without host",
			cfg:     config.EmailConfig{Provider: "smtp"},
			wantErr: "host is required",
		},
		{
			name:    "gmail without credentials",
			cfg:     config.EmailConfig{Provider: "gmail", FromAddress: "noreply@example.com"},
			wantErr: "credentials JSON is required",
		},
		{
			name:    "unknown provider",
			cfg:     config.EmailConfig{Provider: "carrier-pigeon"},
			wantErr: "unknown email provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := NewFactory(tt.cfg, nil)(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, sender)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, sender)
		})
	}
}
