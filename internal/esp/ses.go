package esp

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/ignite/deliverability-engine/internal/pkg/logger"
)

// SESAPI is the subset of the sesv2 client the transport uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport sends probe messages through AWS SES using the SDK v2.
type SESTransport struct {
	client           SESAPI
	configurationSet string
	timeout          time.Duration
	now              func() time.Time
}

// NewSESTransport builds an SES transport. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
// Each send is bounded by timeout when it is positive.
func NewSESTransport(ctx context.Context, accessKey, secretKey, region, configurationSet string, timeout time.Duration) (*SESTransport, error) {
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewSESTransportWithClient(sesv2.NewFromConfig(cfg), configurationSet, timeout), nil
}

// NewSESTransportWithClient wraps an existing SES client.
func NewSESTransportWithClient(client SESAPI, configurationSet string, timeout time.Duration) *SESTransport {
	return &SESTransport{
		client:           client,
		configurationSet: configurationSet,
		timeout:          timeout,
		now:              time.Now,
	}
}

// Send delivers a single message. Errors from SES are returned unchanged in
// meaning so the probe can report them.
func (t *SESTransport) Send(ctx context.Context, msg domain.OutboundMessage) (domain.SendReceipt, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("purpose"), Value: aws.String("deliverability_probe")},
		},
	}
	if t.configurationSet != "" {
		input.ConfigurationSetName = aws.String(t.configurationSet)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	out, err := t.client.SendEmail(ctx, input)
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("ses send: %w", err)
	}

	messageID := ""
	if out != nil && out.MessageId != nil {
		messageID = *out.MessageId
	}
	logger.Debug("ses accepted probe", "to", msg.To, "message_id", messageID)

	return domain.SendReceipt{MessageID: messageID, SentAt: t.now()}, nil
}
