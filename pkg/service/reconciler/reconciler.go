// Package reconciler turns verified gateway webhook events into lifecycle
// transitions. It owns no business rules: signature verification and
// decoding happen at the gateway boundary, duplicate suppression is an
// optimization over the ledger's own idempotency, and every event routes
// to the one service method that handles its kind.
package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/impactlink/impactlink/pkg/cache"
	"github.com/impactlink/impactlink/pkg/domain"
	dondomain "github.com/impactlink/impactlink/pkg/domain/donation"
	"github.com/impactlink/impactlink/pkg/money"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
)

// Donations is the slice of the donation lifecycle manager the reconciler
// dispatches to.
type Donations interface {
	ApplyTransition(ctx context.Context, paymentRef string, outcome dondomain.Outcome) error
}

// Subscriptions is the slice of the subscription service the reconciler
// dispatches to.
type Subscriptions interface {
	HandleBillingSucceeded(ctx context.Context, externalRef, paymentRef string, amount money.Amount, currency money.Code, periodEnd time.Time) error
	HandleBillingFailed(ctx context.Context, externalRef string) error
	HandleRemoteCancelled(ctx context.Context, externalRef string) error
}

// Service reconciles webhook deliveries against local state.
type Service struct {
	gw            gateway.Gateway
	donations     Donations
	subscriptions Subscriptions
	dedup         cache.EventCache
	dedupTTL      time.Duration
	logger        *slog.Logger
}

// New creates a Service. A nil dedup cache disables duplicate
// short-circuiting; the ledger's status guards still make redeliveries
// safe.
func New(
	gw gateway.Gateway,
	donations Donations,
	subscriptions Subscriptions,
	dedup cache.EventCache,
	dedupTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		gw:            gw,
		donations:     donations,
		subscriptions: subscriptions,
		dedup:         dedup,
		dedupTTL:      dedupTTL,
		logger:        logger,
	}
}

// Handle verifies one webhook delivery and applies its effect. The
// returned error classifies the delivery for the HTTP layer:
// domain.ErrSignatureVerification means reject, nil means acknowledge.
// Unknown event kinds and unknown references are acknowledged so the
// gateway stops redelivering what this system will never act on.
func (s *Service) Handle(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gw.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}

	if s.dedup != nil {
		seen, err := s.dedup.Seen(ctx, evt.ID)
		if err != nil {
			// Cache trouble never blocks reconciliation.
			s.logger.Warn("event dedup lookup failed", "event_id", evt.ID, "error", err)
		} else if seen {
			s.logger.Info("duplicate event skipped", "event_id", evt.ID, "kind", evt.Kind)
			return nil
		}
	}

	err = s.dispatch(ctx, evt)
	if errors.Is(err, domain.ErrUnknownReference) {
		s.logger.Warn("event references nothing local, acknowledging",
			"event_id", evt.ID, "kind", evt.Kind, "error", err)
		err = nil
	}
	if err != nil {
		return err
	}

	if s.dedup != nil {
		if err := s.dedup.Mark(ctx, evt.ID, s.dedupTTL); err != nil {
			s.logger.Warn("event dedup mark failed", "event_id", evt.ID, "error", err)
		}
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, evt *gateway.Event) error {
	s.logger.Info("reconciling event", "event_id", evt.ID, "kind", evt.Kind)

	switch evt.Kind {
	case gateway.EventPaymentSucceeded:
		return s.donations.ApplyTransition(ctx, evt.PaymentIntentID, dondomain.OutcomeSucceeded)
	case gateway.EventPaymentFailed:
		return s.donations.ApplyTransition(ctx, evt.PaymentIntentID, dondomain.OutcomeFailed)
	case gateway.EventChargeRefunded:
		return s.donations.ApplyTransition(ctx, evt.PaymentIntentID, dondomain.OutcomeRefunded)
	case gateway.EventBillingSucceeded:
		return s.subscriptions.HandleBillingSucceeded(ctx,
			evt.SubscriptionID, evt.PaymentIntentID,
			evt.AmountMinorUnits, money.Code(evt.Currency), evt.PeriodEnd)
	case gateway.EventBillingFailed:
		return s.subscriptions.HandleBillingFailed(ctx, evt.SubscriptionID)
	case gateway.EventSubscriptionDeleted:
		return s.subscriptions.HandleRemoteCancelled(ctx, evt.SubscriptionID)
	default:
		s.logger.Info("event kind not handled, acknowledging", "event_id", evt.ID, "kind", evt.Kind)
		return nil
	}
}
