package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESSender implements Sender using Amazon SES raw messages, which keeps
// Reply-To, CC and custom headers intact.
type SESSender struct {
	client *ses.Client
	now    func() time.Time
}

// NewSESSender creates a new SESSender from the default AWS credential chain.
func NewSESSender(ctx context.Context, region string) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("ses: failed to load AWS config: %w", err)
	}
	return &SESSender{client: ses.NewFromConfig(cfg), now: time.Now}, nil
}

// Send sends an email via SES and returns the SES message ID.
func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	raw, _, err := Build(msg, s.now())
	if err != nil {
		return "", err
	}

	out, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(msg.From.String()),
		Destinations: msg.Recipients(),
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return "", fmt.Errorf("ses: failed to send email: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}

// Verify checks the account's sending quota, which requires valid credentials.
func (s *SESSender) Verify(ctx context.Context) error {
	if _, err := s.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{}); err != nil {
		return fmt.Errorf("ses: failed to fetch send quota: %w", err)
	}
	return nil
}
