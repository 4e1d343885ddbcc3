package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/logger"
	"github.com/newsletter-dev/newsletter/shared/middleware/metrics"
)

const transportSES = "ses"

type SESConfig struct {
	Region     string
	AccessKey  string
	SecretKey  domain.Secret
	Sender     string
	SenderName string
	Timeout    time.Duration
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES using the SDK v2.
type SESSender struct {
	client  sesAPI
	from    string
	timeout time.Duration
}

// NewSESSender uses static credentials when both keys are set and the default
// AWS credential chain otherwise.
func NewSESSender(ctx context.Context, cfg SESConfig) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && !cfg.SecretKey.IsEmpty() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey.Expose(), ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	logger.Log.Info("initialized ses mail sender", "region", cfg.Region)
	return newSESSender(sesv2.NewFromConfig(awsCfg), cfg), nil
}

func newSESSender(client sesAPI, cfg SESConfig) *SESSender {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SESSender{
		client:  client,
		from:    fromHeader(cfg.Sender, cfg.SenderName),
		timeout: cfg.Timeout,
	}
}

func (s *SESSender) Send(ctx context.Context, to domain.SubscriberEmail, subject, html, text string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveEmail(transportSES, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{to.String()}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	logger.Log.Debug("email sent", "transport", transportSES, "to", logger.RedactEmail(to.String()), "message_id", messageID)
	return nil
}
