package setup

import (
	"context"
	"time"

	"github.com/newsletter-dev/newsletter/backend/internal/handler"
	"github.com/newsletter-dev/newsletter/backend/internal/service"
	"github.com/newsletter-dev/newsletter/backend/internal/storage/pg"
	"github.com/newsletter-dev/newsletter/backend/internal/utils/email"
	"github.com/newsletter-dev/newsletter/shared/config"
	"github.com/newsletter-dev/newsletter/shared/crypto"
	"github.com/newsletter-dev/newsletter/shared/logger"
	"github.com/newsletter-dev/newsletter/shared/middleware/ratelimiter"
	"github.com/newsletter-dev/newsletter/shared/workerpool"
)

// signup limiter entries for idle addresses are dropped after this long
const limiterExpiration = time.Hour

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config        *config.Config
	Storage       *pg.Storage
	Handler       *handler.Handler
	HashPool      *workerpool.Pool
	SignupLimiter *ratelimiter.UserRateLimiter // nil when signup rate limiting is disabled
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg.Private.Pg)
	if err != nil {
		return nil, err
	}

	sender, err := email.New(ctx, cfg.Public.Email, cfg.Private.Email)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	pool := workerpool.New(cfg.Public.Auth.HashWorkers)

	auth, err := service.NewAuth(storage, pool, crypto.DefaultParams())
	if err != nil {
		pool.Close()
		storage.Cleanup()
		return nil, err
	}
	subscription, err := service.NewSubscription(storage, sender, cfg.Public.Application.BaseURL)
	if err != nil {
		pool.Close()
		storage.Cleanup()
		return nil, err
	}
	newsletter := service.NewNewsletter(storage, auth, sender, cfg.Public.Newsletter)

	deps := &Dependencies{
		Config:   cfg,
		Storage:  storage,
		Handler:  handler.New(subscription, newsletter, storage),
		HashPool: pool,
	}
	if rl := cfg.Public.RateLimit; rl.SignupRPS > 0 {
		deps.SignupLimiter = ratelimiter.New(rl.SignupRPS, rl.SignupBurst, limiterExpiration)
	}

	logger.Log.Info("dependencies initialized",
		"email_transport", cfg.Public.Email.Transport,
		"hash_workers", cfg.Public.Auth.HashWorkers,
		"signup_rate_limit", deps.SignupLimiter != nil)

	return deps, nil
}

// Close releases resources in reverse order of creation.
func (d *Dependencies) Close() {
	if d.SignupLimiter != nil {
		d.SignupLimiter.Stop()
	}
	d.HashPool.Close()
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close storage", "error", err)
	}
}
