package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/newsletter-dev/newsletter/shared/config"
	"github.com/newsletter-dev/newsletter/shared/domain"
	internal_errors "github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIssue = domain.NewsletterIssue{
	Title: "Newsletter title",
	HTML:  "<p>Newsletter body as HTML</p>",
	Text:  "Newsletter body as plain text",
}

func confirmed(emails ...string) []domain.ConfirmedSubscriber {
	subs := make([]domain.ConfirmedSubscriber, 0, len(emails))
	for _, e := range emails {
		subs = append(subs, domain.ConfirmedSubscriber{Id: uuid.New(), Email: e})
	}
	return subs
}

func TestPublish_Auth(t *testing.T) {
	ctx := context.Background()

	t.Run("missing authorization sends nothing", func(t *testing.T) {
		storage := &MockNewsletterStorage{Subscribers: confirmed("a@example.com")}
		email := &MockEmail{}
		n := NewNewsletter(storage, &MockAuthService{}, email, config.Newsletter{})

		err := n.Publish(ctx, testIssue, "")
		assert.True(t, internal_errors.IsAuth(err))
		assert.Zero(t, storage.calls)
		assert.Empty(t, email.Sent())
	})

	t.Run("rejected credentials send nothing", func(t *testing.T) {
		storage := &MockNewsletterStorage{Subscribers: confirmed("a@example.com")}
		email := &MockEmail{}
		auth := &MockAuthService{MockVerify: func(ctx context.Context, creds domain.Credentials) (domain.UserId, error) {
			assert.Equal(t, "admin", creds.Username)
			assert.Equal(t, "wrong", creds.Password.Expose())
			return uuid.Nil, internal_errors.Auth("invalid username or password", nil)
		}}
		n := NewNewsletter(storage, auth, email, config.Newsletter{})

		err := n.Publish(ctx, testIssue, basic("admin:wrong"))
		assert.True(t, internal_errors.IsAuth(err))
		assert.Zero(t, storage.calls)
		assert.Empty(t, email.Sent())
	})
}

func TestPublish_Delivery(t *testing.T) {
	ctx := context.Background()

	t.Run("sends to every confirmed subscriber", func(t *testing.T) {
		storage := &MockNewsletterStorage{Subscribers: confirmed("a@example.com", "b@example.com")}
		email := &MockEmail{}
		n := NewNewsletter(storage, &MockAuthService{}, email, config.Newsletter{})

		require.NoError(t, n.Publish(ctx, testIssue, basic("admin:pw")))

		sent := email.Sent()
		require.Len(t, sent, 2)
		assert.Equal(t, "a@example.com", sent[0].To)
		assert.Equal(t, "b@example.com", sent[1].To)
		assert.Equal(t, sentEmail{To: "a@example.com", Subject: testIssue.Title, HTML: testIssue.HTML, Text: testIssue.Text}, sent[0])
	})

	t.Run("no confirmed subscribers", func(t *testing.T) {
		email := &MockEmail{}
		n := NewNewsletter(&MockNewsletterStorage{}, &MockAuthService{}, email, config.Newsletter{})

		require.NoError(t, n.Publish(ctx, testIssue, basic("admin:pw")))
		assert.Empty(t, email.Sent())
	})

	t.Run("invalid stored emails are skipped", func(t *testing.T) {
		storage := &MockNewsletterStorage{Subscribers: confirmed("not-an-email", "a@example.com", "")}
		email := &MockEmail{}
		n := NewNewsletter(storage, &MockAuthService{}, email, config.Newsletter{})

		require.NoError(t, n.Publish(ctx, testIssue, basic("admin:pw")))
		sent := email.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "a@example.com", sent[0].To)
	})

	t.Run("first transport failure aborts", func(t *testing.T) {
		storage := &MockNewsletterStorage{Subscribers: confirmed("a@example.com", "b@example.com", "c@example.com")}
		email := &MockEmail{MockSend: func(to domain.SubscriberEmail) error {
			if to.String() == "b@example.com" {
				return fmt.Errorf("connection refused")
			}
			return nil
		}}
		n := NewNewsletter(storage, &MockAuthService{}, email, config.Newsletter{})

		err := n.Publish(ctx, testIssue, basic("admin:pw"))
		assert.Equal(t, internal_errors.KindTransport, internal_errors.KindOf(err))
		assert.Contains(t, err.Error(), "b@example.com")
		assert.Len(t, email.Sent(), 2, "c@example.com must not be attempted")
	})

	t.Run("continue on failure attempts everyone", func(t *testing.T) {
		storage := &MockNewsletterStorage{Subscribers: confirmed("a@example.com", "b@example.com", "c@example.com")}
		email := &MockEmail{MockSend: func(to domain.SubscriberEmail) error {
			if to.String() != "b@example.com" {
				return fmt.Errorf("mailbox full")
			}
			return nil
		}}
		n := NewNewsletter(storage, &MockAuthService{}, email, config.Newsletter{ContinueOnFailure: true})

		err := n.Publish(ctx, testIssue, basic("admin:pw"))
		assert.Equal(t, internal_errors.KindTransport, internal_errors.KindOf(err))
		assert.Contains(t, err.Error(), "a@example.com")
		assert.Contains(t, err.Error(), "c@example.com")
		assert.Len(t, email.Sent(), 3)
	})

	t.Run("storage failure mid-stream", func(t *testing.T) {
		storage := &MockNewsletterStorage{
			Subscribers: confirmed("a@example.com"),
			Err:         internal_errors.Storage("iterate confirmed subscribers", fmt.Errorf("conn reset")),
		}
		email := &MockEmail{}
		n := NewNewsletter(storage, &MockAuthService{}, email, config.Newsletter{})

		err := n.Publish(ctx, testIssue, basic("admin:pw"))
		assert.Equal(t, internal_errors.KindStorage, internal_errors.KindOf(err))
		assert.Len(t, email.Sent(), 1)
	})

	t.Run("html is sanitized when enabled", func(t *testing.T) {
		storage := &MockNewsletterStorage{Subscribers: confirmed("a@example.com")}
		email := &MockEmail{}
		n := NewNewsletter(storage, &MockAuthService{}, email, config.Newsletter{SanitizeHTML: true})

		issue := testIssue
		issue.HTML = `<p>hello</p><script>alert(1)</script>`
		require.NoError(t, n.Publish(ctx, issue, basic("admin:pw")))

		sent := email.Sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].HTML, "<p>hello</p>")
		assert.NotContains(t, sent[0].HTML, "script")
		assert.Equal(t, issue.Text, sent[0].Text)
	})
}
