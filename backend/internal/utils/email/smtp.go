package email

import (
	"context"
	"fmt"
	"time"

	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/logger"
	"github.com/newsletter-dev/newsletter/shared/middleware/metrics"
	"gopkg.in/gomail.v2"
)

const transportSMTP = "smtp"

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   domain.Secret
	Sender     string
	SenderName string
	Timeout    time.Duration
}

// SMTPSender sends multipart (text + HTML) messages through an SMTP relay.
type SMTPSender struct {
	dialer     *gomail.Dialer
	sender     string
	senderName string
	timeout    time.Duration

	dialAndSend func(m ...*gomail.Message) error
	// abandoned receives the outcome of an exchange that outlived Send.
	abandoned func(to domain.SubscriberEmail, err error)
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	logger.Log.Info("initializing smtp mail sender", "host", cfg.Host, "port", cfg.Port, "user", cfg.Username)
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password.Expose())
	return &SMTPSender{
		dialer:      d,
		sender:      cfg.Sender,
		senderName:  cfg.SenderName,
		timeout:     cfg.Timeout,
		dialAndSend: d.DialAndSend,
		abandoned:   logAbandoned,
	}
}

func logAbandoned(to domain.SubscriberEmail, err error) {
	if err != nil {
		logger.Log.Warn("abandoned smtp send failed", "to", logger.RedactEmail(to.String()), "error", err)
		return
	}
	// reported as failed to the caller, but delivered
	metrics.EmailsTotal.WithLabelValues(transportSMTP, "late").Inc()
	logger.Log.Warn("abandoned smtp send was delivered", "to", logger.RedactEmail(to.String()))
}

func (s *SMTPSender) message(to domain.SubscriberEmail, subject, html, text string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.sender, s.senderName)
	msg.SetHeader("To", to.String())
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)
	return msg
}

// Send gives up when ctx ends or the timeout passes. The timeout bounds the
// caller, not the delivery: gomail cannot interrupt an SMTP exchange, so it
// runs to completion in the background and a send reported as failed may
// still be delivered. Its outcome goes to s.abandoned.
func (s *SMTPSender) Send(ctx context.Context, to domain.SubscriberEmail, subject, html, text string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveEmail(transportSMTP, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := s.message(to, subject, html, text)
	done := make(chan error, 1)
	go func() {
		done <- s.dialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		go func() {
			s.abandoned(to, <-done)
		}()
		return fmt.Errorf("smtp send to %s:%d: %w", s.dialer.Host, s.dialer.Port, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s:%d: %w", s.dialer.Host, s.dialer.Port, err)
		}
	}

	logger.Log.Debug("email sent", "transport", transportSMTP, "to", logger.RedactEmail(to.String()))
	return nil
}
