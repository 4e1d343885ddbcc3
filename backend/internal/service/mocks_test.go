package service

import (
	"context"
	"iter"
	"sync"

	"github.com/google/uuid"
	"github.com/newsletter-dev/newsletter/backend/internal/storage"
	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/errors"
)

// --- Mocks ---

type MockSubscriberTx struct {
	MockCreateSubscriber        func(ctx context.Context, subscriber domain.NewSubscriber) (domain.SubscriberId, error)
	MockCreateConfirmationToken func(ctx context.Context, id domain.SubscriberId) (domain.SubscriptionToken, error)
}

func (m *MockSubscriberTx) CreateSubscriber(ctx context.Context, subscriber domain.NewSubscriber) (domain.SubscriberId, error) {
	if m.MockCreateSubscriber != nil {
		return m.MockCreateSubscriber(ctx, subscriber)
	}
	return uuid.New(), nil
}

func (m *MockSubscriberTx) CreateConfirmationToken(ctx context.Context, id domain.SubscriberId) (domain.SubscriptionToken, error) {
	if m.MockCreateConfirmationToken != nil {
		return m.MockCreateConfirmationToken(ctx, id)
	}
	return "token123", nil
}

type MockSubscriptionStorage struct {
	Tx                      *MockSubscriberTx
	MockSubscriberIdByToken func(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberId, error)
	MockConfirmSubscriber   func(ctx context.Context, id domain.SubscriberId) error

	txCalls int
}

// WithSubscriberTx mimics commit/rollback by reporting whether fn succeeded.
func (m *MockSubscriptionStorage) WithSubscriberTx(ctx context.Context, fn func(storage.SubscriberTx) error) error {
	m.txCalls++
	tx := m.Tx
	if tx == nil {
		tx = &MockSubscriberTx{}
	}
	return fn(tx)
}

func (m *MockSubscriptionStorage) SubscriberIdByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberId, error) {
	if m.MockSubscriberIdByToken != nil {
		return m.MockSubscriberIdByToken(ctx, token)
	}
	return uuid.Nil, errors.NotFound("subscription token not found")
}

func (m *MockSubscriptionStorage) ConfirmSubscriber(ctx context.Context, id domain.SubscriberId) error {
	if m.MockConfirmSubscriber != nil {
		return m.MockConfirmSubscriber(ctx, id)
	}
	return nil
}

type sentEmail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type MockEmail struct {
	MockSend func(to domain.SubscriberEmail) error

	mu   sync.Mutex
	sent []sentEmail
}

// Send records every attempt, failed ones included.
func (m *MockEmail) Send(ctx context.Context, to domain.SubscriberEmail, subject, html, text string) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentEmail{To: to.String(), Subject: subject, HTML: html, Text: text})
	m.mu.Unlock()
	if m.MockSend != nil {
		return m.MockSend(to)
	}
	return nil
}

func (m *MockEmail) Sent() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentEmail(nil), m.sent...)
}

type MockAuthStorage struct {
	MockUserByUsername func(ctx context.Context, username string) (domain.User, error)
}

func (m *MockAuthStorage) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	if m.MockUserByUsername != nil {
		return m.MockUserByUsername(ctx, username)
	}
	return domain.User{}, errors.NotFound("user not found")
}

type MockAuthService struct {
	MockVerify func(ctx context.Context, creds domain.Credentials) (domain.UserId, error)
}

func (m *MockAuthService) Verify(ctx context.Context, creds domain.Credentials) (domain.UserId, error) {
	if m.MockVerify != nil {
		return m.MockVerify(ctx, creds)
	}
	return uuid.New(), nil
}

type MockNewsletterStorage struct {
	Subscribers []domain.ConfirmedSubscriber
	Err         error // yielded after Subscribers

	calls int
}

func (m *MockNewsletterStorage) ConfirmedSubscribers(ctx context.Context) iter.Seq2[domain.ConfirmedSubscriber, error] {
	m.calls++
	return func(yield func(domain.ConfirmedSubscriber, error) bool) {
		for _, s := range m.Subscribers {
			if !yield(s, nil) {
				return
			}
		}
		if m.Err != nil {
			yield(domain.ConfirmedSubscriber{}, m.Err)
		}
	}
}
