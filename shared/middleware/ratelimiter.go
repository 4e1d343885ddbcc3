package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"

	"github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/newsletter-dev/newsletter/shared/logger"
	"github.com/newsletter-dev/newsletter/shared/middleware/metrics"
	"github.com/newsletter-dev/newsletter/shared/middleware/ratelimiter"
	"github.com/newsletter-dev/newsletter/shared/utils"
)

// retryAfterSeconds is sent with every 429.
const retryAfterSeconds = "60"

// RateLimit rejects requests with 429 once the identity returned by
// getIdentity runs out of tokens in rl.
func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if rl.Allow(identity) {
				next.ServeHTTP(w, r)
				return
			}

			metrics.RateLimitedTotal.WithLabelValues(r.URL.Path).Inc()
			logger.Log.Warn("rate limit exceeded", "identity", identity, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", retryAfterSeconds)
			utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{
				Message:    "Rate limit exceeded, try again later",
				StatusCode: http.StatusTooManyRequests,
			})
		})
	}
}

// GetIP identifies a client by the peer address of the TCP connection.
// Forwarding headers are ignored: the service is not deployed behind a proxy
// it could trust.
func GetIP(r *http.Request) (string, error) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return "", fmt.Errorf("invalid remote address %q: %w", r.RemoteAddr, err)
	}
	return addr.Unmap().String(), nil
}
