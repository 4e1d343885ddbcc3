package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEmail(t *testing.T, raw string) domain.SubscriberEmail {
	t.Helper()
	e, err := domain.ParseSubscriberEmail(raw)
	require.NoError(t, err)
	return e
}

func TestHTTPSender_Send(t *testing.T) {
	var (
		got    sendEmailRequest
		header http.Header
		path   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		header = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "newsletter@example.com", domain.NewSecret("server-token"), time.Second)
	err := s.Send(context.Background(), mustEmail(t, "ursula@example.com"), "Hello", "<p>hi</p>", "hi")
	require.NoError(t, err)

	assert.Equal(t, "/email", path)
	assert.Equal(t, "server-token", header.Get(TokenHeader))
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, sendEmailRequest{
		From:     "newsletter@example.com",
		To:       "ursula@example.com",
		Subject:  "Hello",
		HtmlBody: "<p>hi</p>",
		TextBody: "hi",
	}, got)
}

func TestHTTPSender_Failures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "mailbox on fire", http.StatusInternalServerError)
		}))
		defer srv.Close()

		s := NewHTTPSender(srv.URL, "newsletter@example.com", domain.NewSecret("t"), time.Second)
		err := s.Send(context.Background(), mustEmail(t, "a@example.com"), "s", "h", "t")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "mailbox on fire")
	})

	t.Run("times out", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		s := NewHTTPSender(srv.URL, "newsletter@example.com", domain.NewSecret("t"), 50*time.Millisecond)
		start := time.Now()
		err := s.Send(context.Background(), mustEmail(t, "a@example.com"), "s", "h", "t")
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		s := NewHTTPSender(url, "newsletter@example.com", domain.NewSecret("t"), time.Second)
		assert.Error(t, s.Send(context.Background(), mustEmail(t, "a@example.com"), "s", "h", "t"))
	})
}
