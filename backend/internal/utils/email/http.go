package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/newsletter-dev/newsletter/shared/domain"
	"github.com/newsletter-dev/newsletter/shared/logger"
	"github.com/newsletter-dev/newsletter/shared/middleware/metrics"
)

const (
	transportHTTP = "http"

	// TokenHeader carries the server token of the HTTP mail API.
	TokenHeader = "X-Postmark-Server-Token"
)

// HTTPSender posts messages to a Postmark-compatible mail API.
type HTTPSender struct {
	client   *http.Client
	endpoint string
	sender   string
	token    domain.Secret
	timeout  time.Duration
}

type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

func NewHTTPSender(baseURL, sender string, token domain.Secret, timeout time.Duration) *HTTPSender {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	endpoint, err := url.JoinPath(baseURL, "email")
	if err != nil {
		// config validation accepts any base_url; fall back to plain concatenation
		endpoint = baseURL + "/email"
	}
	return &HTTPSender{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		sender:   sender,
		token:    token,
		timeout:  timeout,
	}
}

func (s *HTTPSender) Send(ctx context.Context, to domain.SubscriberEmail, subject, html, text string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveEmail(transportHTTP, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(sendEmailRequest{
		From:     s.sender,
		To:       to.String(),
		Subject:  subject,
		HtmlBody: html,
		TextBody: text,
	})
	if err != nil {
		return fmt.Errorf("encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(TokenHeader, s.token.Expose())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail api responded %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.Log.Debug("email sent", "transport", transportHTTP, "to", logger.RedactEmail(to.String()))
	return nil
}
