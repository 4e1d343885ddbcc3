package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/newsletter-dev/newsletter/shared/domain"
)

type MockSubscriptionService struct {
	MockSubscribe func(ctx context.Context, name, email string) error
	MockConfirm   func(ctx context.Context, token domain.SubscriptionToken) error
}

func (m *MockSubscriptionService) Subscribe(ctx context.Context, name, email string) error {
	if m.MockSubscribe != nil {
		return m.MockSubscribe(ctx, name, email)
	}
	return nil
}

func (m *MockSubscriptionService) Confirm(ctx context.Context, token domain.SubscriptionToken) error {
	if m.MockConfirm != nil {
		return m.MockConfirm(ctx, token)
	}
	return nil
}

type MockNewsletterService struct {
	MockPublish func(ctx context.Context, issue domain.NewsletterIssue, authorization string) error
}

func (m *MockNewsletterService) Publish(ctx context.Context, issue domain.NewsletterIssue, authorization string) error {
	if m.MockPublish != nil {
		return m.MockPublish(ctx, issue, authorization)
	}
	return nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func setupTestHandler(sub *MockSubscriptionService, news *MockNewsletterService) (*Handler, *chi.Mux) {
	if sub == nil {
		sub = &MockSubscriptionService{}
	}
	if news == nil {
		news = &MockNewsletterService{}
	}
	h := New(sub, news, &MockHealthChecker{})
	r := chi.NewRouter()
	r.Post("/subscriptions", h.Subscribe)
	r.Get("/subscriptions/confirm", h.Confirm)
	r.Post("/newsletters", h.PublishNewsletter)
	return h, r
}

func createRequest(t *testing.T, method, url string, body io.Reader, headers map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}
