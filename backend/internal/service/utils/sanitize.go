package utils

import (
	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowRelativeURLs(true)
	return p
}

// SanitizeHTML strips scripts, event handlers and other active content from
// publisher supplied HTML while keeping ordinary formatting and links.
func SanitizeHTML(html string) string {
	return ugcPolicy.Sanitize(html)
}
