// Package initializer wires concrete infrastructure into the
// application's dependency set.
package initializer

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/impactlink/impactlink/infra"
	infra_cache "github.com/impactlink/impactlink/infra/cache"
	infra_email "github.com/impactlink/impactlink/infra/email"
	infra_eventbus "github.com/impactlink/impactlink/infra/eventbus"
	"github.com/impactlink/impactlink/infra/provider/stripegateway"
	infra_repository "github.com/impactlink/impactlink/infra/repository"
	"github.com/impactlink/impactlink/pkg/app"
	"github.com/impactlink/impactlink/pkg/cache"
	"github.com/impactlink/impactlink/pkg/config"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	// Initialize database
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}

	// Initialize unit of work
	deps.Uow = infra_repository.NewUoW(db)

	// Initialize event bus
	deps.EventBus = infra_eventbus.NewWithMemory(logger)

	// Initialize the processed-event cache: Redis when configured, so
	// duplicate webhook suppression survives restarts and spans replicas.
	var eventCache cache.EventCache
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opt.PoolSize = cfg.Redis.PoolSize
		opt.DialTimeout = cfg.Redis.DialTimeout
		opt.ReadTimeout = cfg.Redis.ReadTimeout
		opt.WriteTimeout = cfg.Redis.WriteTimeout
		eventCache = infra_cache.NewRedisEventCache(opt, cfg.Redis.KeyPrefix, logger)
	} else {
		eventCache = infra_cache.NewMemoryEventCache()
	}
	deps.EventCache = eventCache

	// Initialize payment gateway
	deps.Gateway = stripegateway.New(cfg.Stripe, logger)

	// Initialize email delivery
	if cfg.Email.Enabled {
		deps.EmailSender = infra_email.NewSMTPSender(cfg.Email, logger)
	} else {
		deps.EmailSender = infra_email.NewNopSender(logger)
	}

	return
}
