package middleware

import "net/http"

// APIContentSecurityPolicy forbids every resource type. The API only serves
// plain text and JSON.
const APIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

var staticSecurityHeaders = map[string]string{
	"X-Frame-Options":        "DENY",
	"X-Content-Type-Options": "nosniff",
	"Referrer-Policy":        "no-referrer",
	"Permissions-Policy":     "camera=(), microphone=(), geolocation=(), payment=()",
}

// SecurityHeaders sets the hardening headers on every response. HSTS is only
// sent when the service is reachable over https.
func SecurityHeaders(https bool, csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range staticSecurityHeaders {
				h.Set(k, v)
			}
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if https {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
