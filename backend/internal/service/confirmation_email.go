package service

import (
	"net/url"
	"strings"

	"github.com/osteele/liquid"
)

const (
	confirmationSubject = "Email Confirmation"

	confirmationTextTemplate = "Welcome to our newsletter!\nVisit {{ link }} to confirm your subscription."
	confirmationHTMLTemplate = `Welcome to our newsletter!<br />Click <a href="{{ link | escape }}">here</a> to confirm your subscription.`
)

type confirmationEmail struct {
	text *liquid.Template
	html *liquid.Template
}

func newConfirmationEmail() (*confirmationEmail, error) {
	engine := liquid.NewEngine()
	text, err := engine.ParseString(confirmationTextTemplate)
	if err != nil {
		return nil, err
	}
	html, err := engine.ParseString(confirmationHTMLTemplate)
	if err != nil {
		return nil, err
	}
	return &confirmationEmail{text: text, html: html}, nil
}

func (c *confirmationEmail) render(link string) (html, text string, err error) {
	bindings := map[string]any{"link": link}
	if text, err = c.text.RenderString(bindings); err != nil {
		return "", "", err
	}
	if html, err = c.html.RenderString(bindings); err != nil {
		return "", "", err
	}
	return html, text, nil
}

// ConfirmationLink is the URL a new subscriber follows to confirm.
func ConfirmationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/subscriptions/confirm?subscription_token=" + url.QueryEscape(token)
}
