// Package subscription manages recurring donations: registering billing
// schedules with the payment gateway, pausing and resuming collection,
// and reacting to the gateway's billing outcomes. Each successful billing
// cycle is recorded as one completed donation through the lifecycle
// manager; a failed cycle leaves the subscription active because the
// gateway retries on its own schedule.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/domain/events"
	subdomain "github.com/impactlink/impactlink/pkg/domain/subscription"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/eventbus"
	"github.com/impactlink/impactlink/pkg/money"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
	"github.com/impactlink/impactlink/pkg/repository"
	donsvc "github.com/impactlink/impactlink/pkg/service/donation"
)

// Service manages recurring donations.
type Service struct {
	uow       repository.UnitOfWork
	gw        gateway.Gateway
	bus       eventbus.Bus
	donations *donsvc.Service
	logger    *slog.Logger
	clock     func() time.Time
}

// New creates a Service.
func New(
	uow repository.UnitOfWork,
	gw gateway.Gateway,
	bus eventbus.Bus,
	donations *donsvc.Service,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:       uow,
		gw:        gw,
		bus:       bus,
		donations: donations,
		logger:    logger,
		clock:     time.Now,
	}
}

// CreateParams are the inputs for starting a recurring donation.
type CreateParams struct {
	DonorID          uuid.UUID
	ProjectID        uuid.UUID
	Amount           money.Money
	Frequency        subdomain.Frequency
	PaymentMethodRef string
}

// Create registers a billing schedule with the gateway and persists the
// subscription as active. The donor is enrolled as a gateway customer on
// first use; the customer ID is cached on the donor record.
func (s *Service) Create(ctx context.Context, p CreateParams) (*dto.SubscriptionRead, error) {
	if !p.Frequency.Valid() {
		return nil, fmt.Errorf("%w: frequency %q", domain.ErrInvalidAmount, p.Frequency)
	}
	if p.Amount.Amount() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}

	var donor *dto.DonorRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		donors, err := uow.Donors()
		if err != nil {
			return err
		}
		donor, err = donors.Get(ctx, p.DonorID)
		if err != nil {
			return err
		}
		projects, err := uow.Projects()
		if err != nil {
			return err
		}
		proj, err := projects.Get(ctx, p.ProjectID)
		if err != nil {
			return err
		}
		if proj.Status != "active" {
			return fmt.Errorf("%w: project is not accepting donations", domain.ErrInvalidTarget)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	customerID := donor.GatewayCustID
	if customerID == "" {
		customerID, err = s.gw.EnsureCustomer(ctx, &gateway.CustomerParams{
			Email:            donor.Email,
			Name:             donor.Name,
			PaymentMethodRef: p.PaymentMethodRef,
		})
		if err != nil {
			return nil, err
		}
		err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			donors, err := uow.Donors()
			if err != nil {
				return err
			}
			return donors.SetGatewayCustomer(ctx, p.DonorID, customerID)
		})
		if err != nil {
			return nil, err
		}
	}

	unit, count, err := p.Frequency.Interval()
	if err != nil {
		return nil, err
	}
	info, err := s.gw.CreateSubscription(ctx, &gateway.CreateSubscriptionParams{
		CustomerID:       customerID,
		AmountMinorUnits: p.Amount.Amount(),
		Currency:         p.Amount.Currency().String(),
		Interval:         unit,
		IntervalCount:    count,
		Description:      "ImpactLink recurring donation",
		Metadata: map[string]string{
			gateway.MetaDonorID:   p.DonorID.String(),
			gateway.MetaProjectID: p.ProjectID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	nextCharge := info.CurrentPeriodEnd
	if nextCharge.IsZero() {
		nextCharge = s.clock().UTC().Add(p.Frequency.Period())
	}

	create := dto.SubscriptionCreate{
		ID:          uuid.New(),
		DonorID:     p.DonorID,
		ProjectID:   p.ProjectID,
		Amount:      p.Amount.Amount(),
		Currency:    p.Amount.Currency().String(),
		Frequency:   string(p.Frequency),
		Status:      string(subdomain.StatusActive),
		ExternalRef: info.ID,
		NextCharge:  nextCharge,
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		subs, err := uow.Subscriptions()
		if err != nil {
			return err
		}
		return subs.Create(ctx, create)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		"subscription_id", create.ID, "donor_id", p.DonorID,
		"frequency", p.Frequency, "external_ref", info.ID)

	s.emit(ctx, events.SubscriptionActivated{
		SubscriptionID: create.ID,
		DonorID:        p.DonorID,
		ProjectID:      p.ProjectID,
		Amount:         p.Amount.Amount(),
		Currency:       p.Amount.Currency(),
		Frequency:      string(p.Frequency),
		NextCharge:     nextCharge,
	})

	return &dto.SubscriptionRead{
		ID:          create.ID,
		DonorID:     create.DonorID,
		ProjectID:   create.ProjectID,
		Amount:      create.Amount,
		Currency:    create.Currency,
		Frequency:   create.Frequency,
		Status:      create.Status,
		ExternalRef: create.ExternalRef,
		NextCharge:  create.NextCharge,
		CreatedAt:   s.clock().UTC(),
	}, nil
}

// Pause voids collection at the gateway and marks the subscription
// paused. Pausing a paused subscription is a no-op.
func (s *Service) Pause(ctx context.Context, id uuid.UUID) error {
	return s.setCollection(ctx, id, subdomain.StatusPaused, s.gw.PauseSubscription)
}

// Resume restores collection at the gateway and marks the subscription
// active again. Resuming an active subscription is a no-op.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) error {
	return s.setCollection(ctx, id, subdomain.StatusActive, s.gw.ResumeSubscription)
}

func (s *Service) setCollection(
	ctx context.Context,
	id uuid.UUID,
	target subdomain.Status,
	gatewayCall func(ctx context.Context, externalRef string) error,
) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status == string(subdomain.StatusCancelled) {
		return fmt.Errorf("%w: subscription is cancelled", domain.ErrInvalidTransition)
	}
	if sub.Status == string(target) {
		return nil
	}

	if err := gatewayCall(ctx, sub.ExternalRef); err != nil {
		return err
	}
	status := string(target)
	return s.updateStatus(ctx, id, status)
}

// Cancel permanently ends the subscription, locally and at the gateway.
// Idempotent.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status == string(subdomain.StatusCancelled) {
		return nil
	}

	if err := s.gw.CancelSubscription(ctx, sub.ExternalRef); err != nil {
		return err
	}
	if err := s.updateStatus(ctx, id, string(subdomain.StatusCancelled)); err != nil {
		return err
	}

	s.logger.Info("subscription cancelled", "subscription_id", id)
	s.emit(ctx, events.SubscriptionCancelled{
		SubscriptionID: id,
		DonorID:        sub.DonorID,
		ProjectID:      sub.ProjectID,
		CancelledAt:    s.clock().UTC(),
	})
	return nil
}

// HandleBillingSucceeded records one successful billing cycle: the
// captured payment becomes a completed donation and the next charge date
// advances to the reported period end. Idempotent on the payment
// reference.
func (s *Service) HandleBillingSucceeded(ctx context.Context, externalRef, paymentRef string, amount money.Amount, currency money.Code, periodEnd time.Time) error {
	sub, err := s.getByExternalRef(ctx, externalRef)
	if err != nil {
		return err
	}
	if sub.Status == string(subdomain.StatusCancelled) {
		// A cancelled subscription never spawns further donations; a late
		// invoice for the final period is acknowledged and dropped.
		s.logger.Warn("billing event for cancelled subscription ignored",
			"subscription_id", sub.ID, "payment_ref", paymentRef)
		return nil
	}

	if amount == 0 {
		amount = sub.Amount
	}
	if currency == "" {
		currency = money.Code(sub.Currency)
	}
	err = s.donations.RecordCaptured(ctx, donsvc.CaptureParams{
		DonorID:    sub.DonorID,
		ProjectID:  sub.ProjectID,
		PaymentRef: paymentRef,
		Amount:     amount,
		Currency:   currency,
	})
	if err != nil {
		return err
	}

	next := periodEnd
	if next.IsZero() {
		next = s.clock().UTC().Add(subdomain.Frequency(sub.Frequency).Period())
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		subs, err := uow.Subscriptions()
		if err != nil {
			return err
		}
		return subs.Update(ctx, sub.ID, dto.SubscriptionUpdate{NextCharge: &next})
	})
	if err != nil {
		return err
	}

	s.logger.Info("billing cycle recorded",
		"subscription_id", sub.ID, "payment_ref", paymentRef, "next_charge", next)
	return nil
}

// HandleBillingFailed reacts to a failed billing cycle. The subscription
// stays active; the gateway retries and eventually cancels the
// registration itself, which arrives as a separate deletion event.
func (s *Service) HandleBillingFailed(ctx context.Context, externalRef string) error {
	sub, err := s.getByExternalRef(ctx, externalRef)
	if err != nil {
		return err
	}

	s.logger.Warn("billing cycle failed",
		"subscription_id", sub.ID, "donor_id", sub.DonorID)
	s.emit(ctx, events.SubscriptionBillingFailed{
		SubscriptionID: sub.ID,
		DonorID:        sub.DonorID,
		ProjectID:      sub.ProjectID,
		Amount:         sub.Amount,
		Currency:       money.Code(sub.Currency),
		FailedAt:       s.clock().UTC(),
	})
	return nil
}

// HandleRemoteCancelled marks the subscription cancelled after the
// gateway deleted the registration, typically after exhausting billing
// retries. Idempotent.
func (s *Service) HandleRemoteCancelled(ctx context.Context, externalRef string) error {
	sub, err := s.getByExternalRef(ctx, externalRef)
	if err != nil {
		return err
	}
	if sub.Status == string(subdomain.StatusCancelled) {
		return nil
	}

	if err := s.updateStatus(ctx, sub.ID, string(subdomain.StatusCancelled)); err != nil {
		return err
	}

	s.logger.Info("subscription cancelled by gateway", "subscription_id", sub.ID)
	s.emit(ctx, events.SubscriptionCancelled{
		SubscriptionID: sub.ID,
		DonorID:        sub.DonorID,
		ProjectID:      sub.ProjectID,
		CancelledAt:    s.clock().UTC(),
	})
	return nil
}

// Get retrieves a subscription by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (sub *dto.SubscriptionRead, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		subs, err := uow.Subscriptions()
		if err != nil {
			return err
		}
		sub, err = subs.Get(ctx, id)
		return err
	})
	if err != nil {
		sub = nil
	}
	return
}

// ListByDonor lists a donor's subscriptions, newest first.
func (s *Service) ListByDonor(ctx context.Context, donorID uuid.UUID) (list []*dto.SubscriptionRead, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		subs, err := uow.Subscriptions()
		if err != nil {
			return err
		}
		list, err = subs.ListByDonor(ctx, donorID)
		return err
	})
	if err != nil {
		list = nil
	}
	return
}

func (s *Service) getByExternalRef(ctx context.Context, externalRef string) (sub *dto.SubscriptionRead, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		subs, err := uow.Subscriptions()
		if err != nil {
			return err
		}
		sub, err = subs.GetByExternalRef(ctx, externalRef)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: subscription %q", domain.ErrUnknownReference, externalRef)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) updateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		subs, err := uow.Subscriptions()
		if err != nil {
			return err
		}
		return subs.Update(ctx, id, dto.SubscriptionUpdate{Status: &status})
	})
}

func (s *Service) emit(ctx context.Context, evt eventbus.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, evt); err != nil {
		s.logger.Error("event emit failed", "type", evt.Type(), "error", err)
	}
}
