// Package app assembles the services from their dependencies and wires
// the post-commit event handlers.
package app

import (
	"log/slog"

	"github.com/impactlink/impactlink/pkg/cache"
	"github.com/impactlink/impactlink/pkg/config"
	"github.com/impactlink/impactlink/pkg/eventbus"
	"github.com/impactlink/impactlink/pkg/fees"
	"github.com/impactlink/impactlink/pkg/fraud"
	"github.com/impactlink/impactlink/pkg/handler/notification"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
	"github.com/impactlink/impactlink/pkg/repository"
	donsvc "github.com/impactlink/impactlink/pkg/service/donation"
	projsvc "github.com/impactlink/impactlink/pkg/service/project"
	"github.com/impactlink/impactlink/pkg/service/reconciler"
	subsvc "github.com/impactlink/impactlink/pkg/service/subscription"
)

// Deps contains everything the services are built from.
type Deps struct {
	Uow         repository.UnitOfWork
	Gateway     gateway.Gateway
	EventBus    eventbus.Bus
	EventCache  cache.EventCache
	FraudGate   fraud.Gate
	EmailSender notification.EmailSender
	Logger      *slog.Logger
}

// App holds the assembled services.
type App struct {
	Deps   *Deps
	Config *config.App

	DonationService     *donsvc.Service
	SubscriptionService *subsvc.Service
	ProjectService      *projsvc.Service
	Reconciler          *reconciler.Service
}

// New builds the App and registers the notification handlers on the bus.
func New(deps *Deps, cfg *config.App) *App {
	policy := fees.DefaultPolicy()
	if cfg.Fee != nil {
		policy = fees.Policy{
			PlatformRateBps:   cfg.Fee.PlatformRateBps,
			ProcessorRateBps:  cfg.Fee.ProcessorRateBps,
			ProcessorFixedFee: cfg.Fee.ProcessorFixedFee,
			MinimumAmount:     cfg.Fee.MinimumAmount,
		}
	}

	a := &App{
		Deps:   deps,
		Config: cfg,
	}
	a.DonationService = donsvc.New(
		deps.Uow, deps.Gateway, deps.EventBus, deps.FraudGate, policy, deps.Logger)
	a.SubscriptionService = subsvc.New(
		deps.Uow, deps.Gateway, deps.EventBus, a.DonationService, deps.Logger)
	a.ProjectService = projsvc.New(deps.Uow, deps.Logger)
	a.Reconciler = reconciler.New(
		deps.Gateway, a.DonationService, a.SubscriptionService,
		deps.EventCache, cfg.Events.DedupTTL, deps.Logger)

	if deps.EmailSender != nil {
		notification.New(deps.Uow, deps.EmailSender, deps.Logger).Register(deps.EventBus)
	}
	return a
}
