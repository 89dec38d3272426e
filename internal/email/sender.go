package email

import (
	"context"
	"net/mail"
)

// Sender is the interface that all email providers must implement.
// This abstraction allows swapping email providers (SMTP, Gmail, SES)
// without changing business logic.
type Sender interface {
	// Send delivers msg and returns the provider's message ID.
	Send(ctx context.Context, msg Message) (string, error)
	// Verify checks that the provider is reachable and accepts our credentials.
	Verify(ctx context.Context) error
}

// Priority marks a message as urgent for mail clients that honour it
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

// Message represents an email message to be sent.
type Message struct {
	From     mail.Address
	To       []string
	CC       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
	Priority Priority
	// Headers are extra headers such as X-Application-Type.
	Headers map[string]string
}

// Recipients returns every envelope recipient
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.CC))
	out = append(out, m.To...)
	return append(out, m.CC...)
}
