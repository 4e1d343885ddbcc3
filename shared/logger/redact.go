package logger

import "strings"

// RedactEmail keeps the first two characters of the local part and the
// domain: "ursula@example.com" becomes "ur***@example.com".
func RedactEmail(email string) string {
	name, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(name) > 2 {
		return name[:2] + "***@" + domain
	}
	return "***@" + domain
}
