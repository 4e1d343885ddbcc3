package domain

type NewsletterIssue struct {
	Title string
	HTML  string
	Text  string
}
