package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/newsletter-dev/newsletter/backend/internal/handler"
	mw "github.com/newsletter-dev/newsletter/shared/middleware"
	"github.com/newsletter-dev/newsletter/shared/middleware/metrics"
	rl "github.com/newsletter-dev/newsletter/shared/middleware/ratelimiter"
)

type Options struct {
	AllowedOrigins []string
	HTTPS          bool                // enables HSTS
	SignupLimiter  *rl.UserRateLimiter // nil disables signup rate limiting
}

// New creates the chi router with all routes.
func New(h *handler.Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeaders(opts.HTTPS, mw.APIContentSecurityPolicy))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}))
	}

	r.Get("/health_check", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	var subscribe http.Handler = http.HandlerFunc(h.Subscribe)
	if opts.SignupLimiter != nil {
		// per IP, every signup sends an email
		subscribe = mw.RateLimit(opts.SignupLimiter, mw.GetIP)(subscribe)
	}
	r.Method(http.MethodPost, "/subscriptions", subscribe)
	r.Get("/subscriptions/confirm", h.Confirm)

	r.Post("/newsletters", h.PublishNewsletter)

	return r
}
