package service

import (
	"context"

	"github.com/newsletter-dev/newsletter/backend/internal/storage"
	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/newsletter-dev/newsletter/shared/logger"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, name, email string) error
	Confirm(ctx context.Context, token domain.SubscriptionToken) error
}

type SubscriptionStorage interface {
	WithSubscriberTx(ctx context.Context, fn func(storage.SubscriberTx) error) error
	SubscriberIdByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberId, error)
	ConfirmSubscriber(ctx context.Context, id domain.SubscriberId) error
}

// Email delivers one message to one recipient.
type Email interface {
	Send(ctx context.Context, to domain.SubscriberEmail, subject, html, text string) error
}

type Subscription struct {
	storage SubscriptionStorage
	email   Email
	baseURL string
	tmpl    *confirmationEmail
}

// NewSubscription fails only if the confirmation email templates don't parse.
func NewSubscription(storage SubscriptionStorage, email Email, baseURL string) (*Subscription, error) {
	tmpl, err := newConfirmationEmail()
	if err != nil {
		return nil, errors.Internal("parse confirmation email templates", err)
	}
	return &Subscription{
		storage: storage,
		email:   email,
		baseURL: baseURL,
		tmpl:    tmpl,
	}, nil
}

// Subscribe stores a pending subscriber together with its confirmation token
// and emails the confirmation link. The rows stay committed if the email
// cannot be delivered.
func (s *Subscription) Subscribe(ctx context.Context, name, email string) error {
	subscriber, err := domain.ParseNewSubscriber(name, email)
	if err != nil {
		return err
	}

	var (
		id    domain.SubscriberId
		token domain.SubscriptionToken
	)
	err = s.storage.WithSubscriberTx(ctx, func(tx storage.SubscriberTx) error {
		var err error
		if id, err = tx.CreateSubscriber(ctx, subscriber); err != nil {
			return err
		}
		token, err = tx.CreateConfirmationToken(ctx, id)
		return err
	})
	if err != nil {
		if errors.KindOf(err) == errors.KindInternal {
			return errors.Storage("store new subscriber", err)
		}
		return err
	}

	html, text, err := s.tmpl.render(ConfirmationLink(s.baseURL, token))
	if err != nil {
		return errors.Internal("render confirmation email", err)
	}
	if err := s.email.Send(ctx, subscriber.Email, confirmationSubject, html, text); err != nil {
		return errors.Transport("send confirmation email", err)
	}

	logger.Log.Info("new subscriber", "subscriber_id", id, "email", logger.RedactEmail(subscriber.Email.String()))
	return nil
}

// Confirm redeems a confirmation token. Tokens are not consumed, so
// confirming twice succeeds twice. An empty token is just an unknown one.
func (s *Subscription) Confirm(ctx context.Context, token domain.SubscriptionToken) error {
	id, err := s.storage.SubscriberIdByToken(ctx, token)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.Auth("unknown subscription token", err)
		}
		return err
	}

	if err := s.storage.ConfirmSubscriber(ctx, id); err != nil {
		return err
	}

	logger.Log.Info("subscriber confirmed", "subscriber_id", id)
	return nil
}
