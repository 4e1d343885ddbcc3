package service

import (
	"context"
	"fmt"
	"iter"

	"github.com/newsletter-dev/newsletter/backend/internal/service/utils"
	"github.com/newsletter-dev/newsletter/shared/config"
	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/newsletter-dev/newsletter/shared/logger"
	"github.com/newsletter-dev/newsletter/shared/middleware/metrics"
)

type NewsletterService interface {
	Publish(ctx context.Context, issue domain.NewsletterIssue, authorization string) error
}

type NewsletterStorage interface {
	ConfirmedSubscribers(ctx context.Context) iter.Seq2[domain.ConfirmedSubscriber, error]
}

type Newsletter struct {
	storage NewsletterStorage
	auth    AuthService
	email   Email
	cfg     config.Newsletter
}

func NewNewsletter(storage NewsletterStorage, auth AuthService, email Email, cfg config.Newsletter) *Newsletter {
	return &Newsletter{
		storage: storage,
		auth:    auth,
		email:   email,
		cfg:     cfg,
	}
}

// Publish authenticates the publisher from the Authorization header value and
// sends issue to every confirmed subscriber. Stored addresses that no longer
// parse are skipped. By default delivery stops at the first transport failure;
// with ContinueOnFailure every recipient is attempted and all failures are
// reported together.
func (n *Newsletter) Publish(ctx context.Context, issue domain.NewsletterIssue, authorization string) error {
	creds, err := ParseBasicAuth(authorization)
	if err != nil {
		return err
	}
	userID, err := n.auth.Verify(ctx, creds)
	if err != nil {
		return err
	}

	html := issue.HTML
	if n.cfg.SanitizeHTML {
		html = utils.SanitizeHTML(html)
	}

	var (
		sent, skipped int
		failures      []error
	)
	for subscriber, err := range n.storage.ConfirmedSubscribers(ctx) {
		if err != nil {
			if len(failures) > 0 {
				return errors.Join(append(failures, err)...)
			}
			return err
		}

		recipient, err := domain.ParseSubscriberEmail(subscriber.Email)
		if err != nil {
			skipped++
			metrics.NewsletterRecipientsTotal.WithLabelValues("skipped").Inc()
			logger.Log.Warn("skipping a confirmed subscriber, stored contact details are invalid",
				"subscriber_id", subscriber.Id,
				"email", logger.RedactEmail(subscriber.Email),
				"error", errors.Chain(err),
			)
			continue
		}

		if err := n.email.Send(ctx, recipient, issue.Title, html, issue.Text); err != nil {
			metrics.NewsletterRecipientsTotal.WithLabelValues("failed").Inc()
			failure := errors.Transport(fmt.Sprintf("failed to send newsletter issue to %s", recipient), err)
			if !n.cfg.ContinueOnFailure {
				logger.Log.Error("newsletter delivery aborted", "user_id", userID, "sent", sent, "skipped", skipped)
				return failure
			}
			failures = append(failures, failure)
			continue
		}
		sent++
		metrics.NewsletterRecipientsTotal.WithLabelValues("sent").Inc()
	}

	if len(failures) > 0 {
		logger.Log.Error("newsletter delivered partially", "user_id", userID, "sent", sent, "skipped", skipped, "failed", len(failures))
		return errors.Transport(fmt.Sprintf("failed to send newsletter issue to %d recipients", len(failures)), errors.Join(failures...))
	}

	logger.Log.Info("newsletter published", "user_id", userID, "title", issue.Title, "sent", sent, "skipped", skipped)
	return nil
}
