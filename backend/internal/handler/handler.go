package handler

import (
	"context"

	"github.com/newsletter-dev/newsletter/backend/internal/service"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	subscription service.SubscriptionService
	newsletter   service.NewsletterService
	health       HealthChecker
}

func New(subscription service.SubscriptionService, newsletter service.NewsletterService, health HealthChecker) *Handler {
	return &Handler{
		subscription: subscription,
		newsletter:   newsletter,
		health:       health,
	}
}
