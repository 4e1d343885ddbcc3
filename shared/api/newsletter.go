package api

import "github.com/newsletter-dev/newsletter/shared/domain"

// Request DTOs

// Pointers tell an absent field (400) from an empty string, which is a valid value.
type PublishNewsletterRequest struct {
	Title   *string            `json:"title" validate:"required"`
	Content *NewsletterContent `json:"content" validate:"required"`
}

type NewsletterContent struct {
	HTML *string `json:"html" validate:"required"`
	Text *string `json:"text" validate:"required"`
}

// Issue must only be called on a validated request.
func (r PublishNewsletterRequest) Issue() domain.NewsletterIssue {
	return domain.NewsletterIssue{Title: *r.Title, HTML: *r.Content.HTML, Text: *r.Content.Text}
}
