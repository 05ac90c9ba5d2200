// Package notification subscribes to domain events and sends donor-facing
// emails. Handlers run post-commit and best-effort: a failed send is
// logged and dropped, never retried against the ledger.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/domain/events"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/eventbus"
	"github.com/impactlink/impactlink/pkg/money"
	"github.com/impactlink/impactlink/pkg/repository"
)

// EmailSender delivers a single message. Implementations live in infra.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Handler fans domain events out to email.
type Handler struct {
	uow    repository.UnitOfWork
	sender EmailSender
	logger *slog.Logger
}

// New creates a Handler.
func New(uow repository.UnitOfWork, sender EmailSender, logger *slog.Logger) *Handler {
	return &Handler{uow: uow, sender: sender, logger: logger}
}

// Register subscribes all notification handlers on the bus.
func (h *Handler) Register(bus eventbus.Bus) {
	bus.Register(events.TypeDonationCompleted, h.onDonationCompleted)
	bus.Register(events.TypeDonationFailed, h.onDonationFailed)
	bus.Register(events.TypeDonationRefunded, h.onDonationRefunded)
	bus.Register(events.TypeSubscriptionActivated, h.onSubscriptionActivated)
	bus.Register(events.TypeSubscriptionBillingFailed, h.onSubscriptionBillingFailed)
	bus.Register(events.TypeSubscriptionCancelled, h.onSubscriptionCancelled)
}

func (h *Handler) onDonationCompleted(ctx context.Context, e eventbus.Event) error {
	evt, ok := e.(events.DonationCompleted)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", e.Type())
	}
	donor, err := h.donor(ctx, evt.DonorID)
	if err != nil {
		return err
	}
	subject := "Thank you for your donation"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour donation of %s was received. "+
			"%s of it goes directly to the cause, and you earned %d impact points.\n\n"+
			"The ImpactLink team",
		donor.Name, format(evt.GrossAmount, evt.Currency), format(evt.NetAmount, evt.Currency), evt.ImpactScore)
	return h.send(ctx, donor.Email, subject, body)
}

func (h *Handler) onDonationFailed(ctx context.Context, e eventbus.Event) error {
	evt, ok := e.(events.DonationFailed)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", e.Type())
	}
	donor, err := h.donor(ctx, evt.DonorID)
	if err != nil {
		return err
	}
	subject := "Your donation could not be processed"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour donation of %s did not go through. "+
			"No charge was made; you can try again any time.\n\n"+
			"The ImpactLink team",
		donor.Name, format(evt.GrossAmount, evt.Currency))
	return h.send(ctx, donor.Email, subject, body)
}

func (h *Handler) onDonationRefunded(ctx context.Context, e eventbus.Event) error {
	evt, ok := e.(events.DonationRefunded)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", e.Type())
	}
	donor, err := h.donor(ctx, evt.DonorID)
	if err != nil {
		return err
	}
	subject := "Your donation was refunded"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour donation has been refunded (%s). "+
			"The amount will appear on your statement within a few business days.\n\n"+
			"The ImpactLink team",
		donor.Name, format(evt.NetAmount, evt.Currency))
	return h.send(ctx, donor.Email, subject, body)
}

func (h *Handler) onSubscriptionActivated(ctx context.Context, e eventbus.Event) error {
	evt, ok := e.(events.SubscriptionActivated)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", e.Type())
	}
	donor, err := h.donor(ctx, evt.DonorID)
	if err != nil {
		return err
	}
	subject := "Your recurring donation is active"
	body := fmt.Sprintf(
		"Hi %s,\n\nYou are now giving %s %s. The first charge lands on %s. "+
			"You can pause or cancel at any time.\n\n"+
			"The ImpactLink team",
		donor.Name, format(evt.Amount, evt.Currency), evt.Frequency,
		evt.NextCharge.Format("January 2, 2006"))
	return h.send(ctx, donor.Email, subject, body)
}

func (h *Handler) onSubscriptionBillingFailed(ctx context.Context, e eventbus.Event) error {
	evt, ok := e.(events.SubscriptionBillingFailed)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", e.Type())
	}
	donor, err := h.donor(ctx, evt.DonorID)
	if err != nil {
		return err
	}
	subject := "We could not process your recurring donation"
	body := fmt.Sprintf(
		"Hi %s,\n\nThis cycle's charge of %s failed. "+
			"We will retry automatically; please check your payment method.\n\n"+
			"The ImpactLink team",
		donor.Name, format(evt.Amount, evt.Currency))
	return h.send(ctx, donor.Email, subject, body)
}

func (h *Handler) onSubscriptionCancelled(ctx context.Context, e eventbus.Event) error {
	evt, ok := e.(events.SubscriptionCancelled)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", e.Type())
	}
	donor, err := h.donor(ctx, evt.DonorID)
	if err != nil {
		return err
	}
	subject := "Your recurring donation was cancelled"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour recurring donation has been cancelled. "+
			"Thank you for everything you gave.\n\n"+
			"The ImpactLink team",
		donor.Name)
	return h.send(ctx, donor.Email, subject, body)
}

func (h *Handler) donor(ctx context.Context, id uuid.UUID) (d *dto.DonorRead, err error) {
	err = h.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		donors, err := uow.Donors()
		if err != nil {
			return err
		}
		d, err = donors.Get(ctx, id)
		return err
	})
	if err != nil {
		d = nil
	}
	return
}

func (h *Handler) send(ctx context.Context, to, subject, body string) error {
	if err := h.sender.Send(ctx, to, subject, body); err != nil {
		h.logger.Error("email send failed", "to", to, "subject", subject, "error", err)
		return err
	}
	h.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

func format(amount money.Amount, code money.Code) string {
	m, err := money.New(amount, code)
	if err != nil {
		return fmt.Sprintf("%d %s", amount, code)
	}
	return m.String()
}
