// Package metrics provides Prometheus HTTP metrics middleware and the
// delivery counters of the mail and newsletter components.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// EmailsTotal counts mail transport calls by transport and result ("sent", "failed",
	// "late" for an abandoned SMTP exchange that was delivered after all).
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_total",
			Help: "Total number of emails handed to the mail transport",
		},
		[]string{"transport", "result"},
	)

	EmailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_send_duration_seconds",
			Help:    "Mail transport call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by a rate limiter",
		},
		[]string{"path"},
	)

	// NewsletterRecipientsTotal counts recipients of published issues by
	// outcome ("sent", "skipped", "failed").
	NewsletterRecipientsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_recipients_total",
			Help: "Total number of newsletter recipients processed",
		},
		[]string{"outcome"},
	)
)

// ObserveEmail records one mail transport call.
func ObserveEmail(transport string, start time.Time, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	EmailsTotal.WithLabelValues(transport, result).Inc()
	EmailSendDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records Prometheus metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		// Use chi's route pattern if available to avoid high cardinality
		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}
