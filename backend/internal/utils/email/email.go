// Package email delivers single messages through one of the configured mail
// transports: an HTTP mail API, SMTP or AWS SES.
package email

import (
	"context"
	"fmt"

	"github.com/newsletter-dev/newsletter/shared/config"
	"github.com/newsletter-dev/newsletter/shared/domain"
)

// Sender delivers one message to one recipient. Implementations are safe for
// concurrent use and bound every call by their configured timeout.
type Sender interface {
	Send(ctx context.Context, to domain.SubscriberEmail, subject, html, text string) error
}

// New builds the Sender selected by cfg.Transport.
func New(ctx context.Context, cfg config.Email, secrets config.PrivateEmail) (Sender, error) {
	switch cfg.Transport {
	case config.TransportHTTP, "":
		return NewHTTPSender(cfg.BaseURL, cfg.Sender, domain.NewSecret(secrets.AuthorizationToken), cfg.Timeout), nil
	case config.TransportSMTP:
		return NewSMTPSender(SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   domain.NewSecret(secrets.SMTPPassword),
			Sender:     cfg.Sender,
			SenderName: cfg.SenderName,
			Timeout:    cfg.Timeout,
		}), nil
	case config.TransportSES:
		return NewSESSender(ctx, SESConfig{
			Region:     cfg.SESRegion,
			AccessKey:  secrets.SESAccessKey,
			SecretKey:  domain.NewSecret(secrets.SESSecretKey),
			Sender:     cfg.Sender,
			SenderName: cfg.SenderName,
			Timeout:    cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown email transport %q", cfg.Transport)
	}
}

func fromHeader(sender, name string) string {
	if name == "" {
		return sender
	}
	return fmt.Sprintf("%s <%s>", name, sender)
}
