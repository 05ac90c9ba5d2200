// Package donation implements the donation lifecycle manager: initiation
// against the payment gateway, status transitions driven by payment
// outcomes, refunds, and the captured-billing path for recurring gifts.
//
// Every transition applies its status change, the target's funding
// aggregate and the donor's impact score in one unit of work. Side
// effects (emails, notifications) are emitted on the event bus only
// after that transaction commits.
package donation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/domain"
	dondomain "github.com/impactlink/impactlink/pkg/domain/donation"
	"github.com/impactlink/impactlink/pkg/domain/events"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/eventbus"
	"github.com/impactlink/impactlink/pkg/fees"
	"github.com/impactlink/impactlink/pkg/fraud"
	"github.com/impactlink/impactlink/pkg/impact"
	"github.com/impactlink/impactlink/pkg/money"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
	"github.com/impactlink/impactlink/pkg/repository"
)

// casRetryLimit bounds how often a transition is retried after a
// concurrency conflict before the error surfaces to the caller.
const casRetryLimit = 3

const casRetryDelay = 25 * time.Millisecond

// Service is the donation lifecycle manager.
type Service struct {
	uow    repository.UnitOfWork
	gw     gateway.Gateway
	bus    eventbus.Bus
	gate   fraud.Gate
	policy fees.Policy
	logger *slog.Logger
	clock  func() time.Time
}

// New creates a Service. A nil gate defaults to allowing every donation.
func New(
	uow repository.UnitOfWork,
	gw gateway.Gateway,
	bus eventbus.Bus,
	gate fraud.Gate,
	policy fees.Policy,
	logger *slog.Logger,
) *Service {
	if gate == nil {
		gate = fraud.AllowAll{}
	}
	return &Service{
		uow:    uow,
		gw:     gw,
		bus:    bus,
		gate:   gate,
		policy: policy,
		logger: logger,
		clock:  time.Now,
	}
}

// InitiateParams are the inputs for starting a donation.
type InitiateParams struct {
	DonorID   uuid.UUID
	ProjectID uuid.UUID
	CharityID uuid.UUID
	Amount    money.Money
	Message   string
	Anonymous bool
}

// Initiate validates a donation request, computes its fee split, registers
// a payment intent with the gateway and persists the donation in pending
// status. Returns the created donation and the client secret the donor's
// browser needs to complete payment.
func (s *Service) Initiate(ctx context.Context, p InitiateParams) (*dto.DonationRead, string, error) {
	target := dondomain.Target{ProjectID: p.ProjectID, CharityID: p.CharityID}
	if err := target.Validate(); err != nil {
		return nil, "", err
	}

	split, err := fees.Compute(p.Amount.Amount(), s.policy)
	if err != nil {
		return nil, "", err
	}

	var donor *dto.DonorRead
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		donors, err := uow.Donors()
		if err != nil {
			return err
		}
		donor, err = donors.Get(ctx, p.DonorID)
		if err != nil {
			return err
		}
		info, err := resolveTarget(ctx, uow, p.ProjectID, p.CharityID)
		if err != nil {
			return err
		}
		if !info.accepting {
			return fmt.Errorf("%w: target is not accepting donations", domain.ErrInvalidTarget)
		}
		if info.currency != "" && info.currency != p.Amount.Currency() {
			return money.ErrCurrencyMismatch
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	verdict, err := s.gate.Screen(ctx, fraud.Check{
		DonorID:   p.DonorID,
		ProjectID: p.ProjectID,
		Amount:    p.Amount.Amount(),
		Currency:  p.Amount.Currency(),
	})
	if err != nil {
		return nil, "", err
	}
	if !verdict.Allow {
		s.logger.Warn("donation blocked by fraud gate",
			"donor_id", p.DonorID, "risk_score", verdict.RiskScore, "flags", verdict.Flags)
		return nil, "", fmt.Errorf("%w: donation declined", domain.ErrInvalidAmount)
	}

	intent, err := s.gw.CreatePaymentIntent(ctx, &gateway.CreateIntentParams{
		AmountMinorUnits: split.GrossAmount,
		Currency:         p.Amount.Currency().String(),
		Description:      "ImpactLink donation",
		ReceiptEmail:     donor.Email,
		Metadata: map[string]string{
			gateway.MetaDonorID:   p.DonorID.String(),
			gateway.MetaProjectID: p.ProjectID.String(),
			gateway.MetaCharityID: p.CharityID.String(),
		},
	})
	if err != nil {
		return nil, "", err
	}

	create := dto.DonationCreate{
		ID:           uuid.New(),
		DonorID:      p.DonorID,
		ProjectID:    p.ProjectID,
		CharityID:    p.CharityID,
		PaymentRef:   intent.ID,
		GrossAmount:  split.GrossAmount,
		PlatformFee:  split.PlatformFee,
		ProcessorFee: split.ProcessorFee,
		NetAmount:    split.NetAmount,
		Currency:     p.Amount.Currency().String(),
		Status:       string(dondomain.StatusPending),
		Message:      p.Message,
		Anonymous:    p.Anonymous,
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Donations()
		if err != nil {
			return err
		}
		return repo.Create(ctx, create)
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("donation initiated",
		"donation_id", create.ID, "donor_id", p.DonorID, "payment_ref", intent.ID,
		"gross", split.GrossAmount, "net", split.NetAmount, "currency", create.Currency)

	read := &dto.DonationRead{
		ID:           create.ID,
		DonorID:      create.DonorID,
		ProjectID:    create.ProjectID,
		CharityID:    create.CharityID,
		PaymentRef:   create.PaymentRef,
		GrossAmount:  create.GrossAmount,
		PlatformFee:  create.PlatformFee,
		ProcessorFee: create.ProcessorFee,
		NetAmount:    create.NetAmount,
		Currency:     create.Currency,
		Status:       create.Status,
		Message:      create.Message,
		Anonymous:    create.Anonymous,
		CreatedAt:    s.clock().UTC(),
	}
	return read, intent.ClientSecret, nil
}

// ApplyTransition moves the donation identified by its payment reference
// through the state machine for the given outcome. Duplicate and late
// deliveries resolve to no-ops; illegal edges return
// domain.ErrInvalidTransition. An unknown payment reference returns
// domain.ErrUnknownReference.
func (s *Service) ApplyTransition(ctx context.Context, paymentRef string, outcome dondomain.Outcome) error {
	return s.transition(ctx, byPaymentRef(paymentRef), outcome, "")
}

// Refund requests a full refund from the gateway for a completed donation
// and applies the refunded transition. The later charge.refunded webhook
// for the same payment lands as a duplicate no-op.
func (s *Service) Refund(ctx context.Context, donationID uuid.UUID, reason string) error {
	var d *dto.DonationRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Donations()
		if err != nil {
			return err
		}
		d, err = repo.Get(ctx, donationID)
		return err
	})
	if err != nil {
		return err
	}

	decision, err := dondomain.Decide(dondomain.Status(d.Status), dondomain.OutcomeRefunded)
	if err != nil {
		return err
	}
	if !decision.Apply {
		// Already refunded.
		return nil
	}

	if _, err := s.gw.CreateRefund(ctx, &gateway.RefundParams{
		PaymentIntentID: d.PaymentRef,
		Reason:          reason,
	}); err != nil {
		return err
	}

	return s.transition(ctx, byID(donationID), dondomain.OutcomeRefunded, reason)
}

// CaptureParams describes a payment the gateway already collected, used
// by recurring billing to record each successful cycle as a donation.
type CaptureParams struct {
	DonorID    uuid.UUID
	ProjectID  uuid.UUID
	CharityID  uuid.UUID
	PaymentRef string
	Amount     money.Amount
	Currency   money.Code
}

// RecordCaptured creates a completed donation for an already-captured
// payment. Idempotent on the payment reference: a redelivered billing
// event finds the existing row and leaves it untouched.
func (s *Service) RecordCaptured(ctx context.Context, p CaptureParams) error {
	target := dondomain.Target{ProjectID: p.ProjectID, CharityID: p.CharityID}
	if err := target.Validate(); err != nil {
		return err
	}
	split, err := fees.Compute(p.Amount, s.policy)
	if err != nil {
		return err
	}

	create := dto.DonationCreate{
		ID:           uuid.New(),
		DonorID:      p.DonorID,
		ProjectID:    p.ProjectID,
		CharityID:    p.CharityID,
		PaymentRef:   p.PaymentRef,
		GrossAmount:  split.GrossAmount,
		PlatformFee:  split.PlatformFee,
		ProcessorFee: split.ProcessorFee,
		NetAmount:    split.NetAmount,
		Currency:     p.Currency.String(),
		Status:       string(dondomain.StatusPending),
		Recurring:    true,
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Donations()
		if err != nil {
			return err
		}
		if _, err := repo.GetByPaymentRef(ctx, p.PaymentRef); err == nil {
			return domain.ErrAlreadyExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return repo.Create(ctx, create)
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Redelivery, or a crash between the insert and the transition
		// below. Re-driving the transition finishes a stranded pending row
		// and is a no-op when the donation already completed.
		s.logger.Info("billing cycle already recorded", "payment_ref", p.PaymentRef)
	} else if err != nil {
		return err
	}

	return s.transition(ctx, byPaymentRef(p.PaymentRef), dondomain.OutcomeSucceeded, "")
}

// Get retrieves a donation by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (d *dto.DonationRead, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Donations()
		if err != nil {
			return err
		}
		d, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		d = nil
	}
	return
}

// ListByDonor lists a donor's donation history, newest first.
func (s *Service) ListByDonor(ctx context.Context, donorID uuid.UUID) (list []*dto.DonationRead, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Donations()
		if err != nil {
			return err
		}
		list, err = repo.ListByDonor(ctx, donorID)
		return err
	})
	if err != nil {
		list = nil
	}
	return
}

// locator finds and row-locks the donation a transition applies to.
type locator func(ctx context.Context, repo donationRepo) (*dto.DonationRead, error)

// donationRepo is the slice of the donation repository the transition
// core needs, kept small for clarity.
type donationRepo interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.DonationRead, error)
	GetByPaymentRefForUpdate(ctx context.Context, ref string) (*dto.DonationRead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus string, update dto.DonationStatusUpdate) error
	CountCompletedByDonorAndTarget(ctx context.Context, donorID, projectID, charityID uuid.UUID) (int64, error)
}

func byPaymentRef(ref string) locator {
	return func(ctx context.Context, repo donationRepo) (*dto.DonationRead, error) {
		d, err := repo.GetByPaymentRefForUpdate(ctx, ref)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment reference %q", domain.ErrUnknownReference, ref)
		}
		return d, err
	}
}

func byID(id uuid.UUID) locator {
	return func(ctx context.Context, repo donationRepo) (*dto.DonationRead, error) {
		return repo.GetForUpdate(ctx, id)
	}
}

// transition runs the state machine for one outcome with bounded retry on
// concurrency conflicts, then emits the transition's event post-commit.
func (s *Service) transition(ctx context.Context, find locator, outcome dondomain.Outcome, reason string) error {
	for attempt := 0; ; attempt++ {
		evt, err := s.transitionOnce(ctx, find, outcome, reason)
		if err == nil {
			if evt != nil {
				s.emit(ctx, evt)
			}
			return nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) || attempt >= casRetryLimit {
			return err
		}
		s.logger.Warn("transition conflicted, retrying", "attempt", attempt+1, "outcome", outcome)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(casRetryDelay):
		}
	}
}

// transitionOnce applies one transition attempt in a single unit of work
// and returns the event to emit after commit, or nil for a no-op.
func (s *Service) transitionOnce(
	ctx context.Context,
	find locator,
	outcome dondomain.Outcome,
	reason string,
) (evt eventbus.Event, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Donations()
		if err != nil {
			return err
		}
		d, err := find(ctx, repo)
		if err != nil {
			return err
		}

		decision, err := dondomain.Decide(dondomain.Status(d.Status), outcome)
		if err != nil {
			return fmt.Errorf("%w: %s -> %s for donation %s",
				domain.ErrInvalidTransition, d.Status, outcome, d.ID)
		}
		if !decision.Apply {
			s.logger.Info("transition is a no-op",
				"donation_id", d.ID, "status", d.Status, "outcome", outcome)
			return nil
		}

		now := s.clock().UTC()
		switch decision.Next {
		case dondomain.StatusCompleted:
			evt, err = s.complete(ctx, uow, repo, d, now)
		case dondomain.StatusFailed:
			evt, err = s.fail(ctx, repo, d, now)
		case dondomain.StatusRefunded:
			evt, err = s.refund(ctx, uow, repo, d, reason, now)
		}
		return err
	})
	if err != nil {
		evt = nil
	}
	return
}

// complete applies pending -> completed: stamps the status, awards the
// impact score and folds the net amount into the target's funding
// aggregate, all in the caller's transaction.
func (s *Service) complete(
	ctx context.Context,
	uow repository.UnitOfWork,
	repo donationRepo,
	d *dto.DonationRead,
	now time.Time,
) (eventbus.Event, error) {
	info, err := resolveTarget(ctx, uow, d.ProjectID, d.CharityID)
	if err != nil {
		return nil, err
	}
	prior, err := repo.CountCompletedByDonorAndTarget(ctx, d.DonorID, d.ProjectID, d.CharityID)
	if err != nil {
		return nil, err
	}

	score := impact.Score(d.NetAmount, info.category, info.donorCount)
	update := dto.DonationStatusUpdate{
		Status:      string(dondomain.StatusCompleted),
		ImpactScore: &score,
		CompletedAt: &now,
	}
	if err := repo.UpdateStatus(ctx, d.ID, d.Status, update); err != nil {
		return nil, err
	}

	var deltaDonors int64
	if prior == 0 {
		deltaDonors = 1
	}
	if err := info.adjust(ctx, d.NetAmount, deltaDonors); err != nil {
		return nil, err
	}

	donors, err := uow.Donors()
	if err != nil {
		return nil, err
	}
	if err := donors.AdjustImpactScore(ctx, d.DonorID, score); err != nil {
		return nil, err
	}

	s.logger.Info("donation completed",
		"donation_id", d.ID, "donor_id", d.DonorID, "net", d.NetAmount,
		"impact_score", score, "new_donor", deltaDonors == 1)

	return events.DonationCompleted{
		DonationID:  d.ID,
		DonorID:     d.DonorID,
		ProjectID:   d.ProjectID,
		CharityID:   d.CharityID,
		GrossAmount: d.GrossAmount,
		NetAmount:   d.NetAmount,
		Currency:    money.Code(d.Currency),
		ImpactScore: score,
		Recurring:   d.Recurring,
		CompletedAt: now,
	}, nil
}

// fail applies pending -> failed. No aggregates moved; nothing was
// captured.
func (s *Service) fail(
	ctx context.Context,
	repo donationRepo,
	d *dto.DonationRead,
	now time.Time,
) (eventbus.Event, error) {
	update := dto.DonationStatusUpdate{Status: string(dondomain.StatusFailed)}
	if err := repo.UpdateStatus(ctx, d.ID, d.Status, update); err != nil {
		return nil, err
	}

	s.logger.Info("donation failed", "donation_id", d.ID, "donor_id", d.DonorID)

	return events.DonationFailed{
		DonationID:  d.ID,
		DonorID:     d.DonorID,
		ProjectID:   d.ProjectID,
		GrossAmount: d.GrossAmount,
		Currency:    money.Code(d.Currency),
		FailedAt:    now,
	}, nil
}

// refund applies completed -> refunded, reversing exactly what completion
// granted: the stored impact score and the net funding contribution. The
// donor count decrements only when this was the donor's last completed
// donation to the target.
func (s *Service) refund(
	ctx context.Context,
	uow repository.UnitOfWork,
	repo donationRepo,
	d *dto.DonationRead,
	reason string,
	now time.Time,
) (eventbus.Event, error) {
	update := dto.DonationStatusUpdate{
		Status:       string(dondomain.StatusRefunded),
		RefundedAt:   &now,
		RefundReason: &reason,
	}
	if err := repo.UpdateStatus(ctx, d.ID, d.Status, update); err != nil {
		return nil, err
	}

	// The row is refunded inside this transaction, so the count covers
	// the donor's other completed donations only.
	remaining, err := repo.CountCompletedByDonorAndTarget(ctx, d.DonorID, d.ProjectID, d.CharityID)
	if err != nil {
		return nil, err
	}
	var deltaDonors int64
	if remaining == 0 {
		deltaDonors = -1
	}

	info, err := resolveTarget(ctx, uow, d.ProjectID, d.CharityID)
	if err != nil {
		return nil, err
	}
	if err := info.adjust(ctx, -d.NetAmount, deltaDonors); err != nil {
		return nil, err
	}

	donors, err := uow.Donors()
	if err != nil {
		return nil, err
	}
	if err := donors.AdjustImpactScore(ctx, d.DonorID, -d.ImpactScore); err != nil {
		return nil, err
	}

	s.logger.Info("donation refunded",
		"donation_id", d.ID, "donor_id", d.DonorID, "net", d.NetAmount,
		"impact_reversed", d.ImpactScore, "reason", reason)

	return events.DonationRefunded{
		DonationID: d.ID,
		DonorID:    d.DonorID,
		ProjectID:  d.ProjectID,
		NetAmount:  d.NetAmount,
		Currency:   money.Code(d.Currency),
		Reason:     reason,
		RefundedAt: now,
	}, nil
}

func (s *Service) emit(ctx context.Context, evt eventbus.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, evt); err != nil {
		s.logger.Error("event emit failed", "type", evt.Type(), "error", err)
	}
}

// targetInfo is the resolved funding target of a donation: the entity
// whose aggregate the transition adjusts.
type targetInfo struct {
	category   string
	donorCount int64
	currency   money.Code
	accepting  bool
	adjust     func(ctx context.Context, deltaFunding, deltaDonors int64) error
}

// resolveTarget loads the aggregate holder for a donation target. When a
// project is named the aggregate lives on the project; a charity-only
// donation keeps its aggregate on the charity.
func resolveTarget(ctx context.Context, uow repository.UnitOfWork, projectID, charityID uuid.UUID) (*targetInfo, error) {
	if projectID != uuid.Nil {
		projects, err := uow.Projects()
		if err != nil {
			return nil, err
		}
		p, err := projects.Get(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return &targetInfo{
			category:   p.Category,
			donorCount: p.DonorCount,
			currency:   money.Code(p.Currency),
			accepting:  p.Status == "active",
			adjust: func(ctx context.Context, deltaFunding, deltaDonors int64) error {
				return projects.AdjustFunding(ctx, projectID, deltaFunding, deltaDonors)
			},
		}, nil
	}

	charities, err := uow.Charities()
	if err != nil {
		return nil, err
	}
	c, err := charities.Get(ctx, charityID)
	if err != nil {
		return nil, err
	}
	return &targetInfo{
		category:   c.Category,
		donorCount: c.DonorCount,
		accepting:  c.Verified,
		adjust: func(ctx context.Context, deltaFunding, deltaDonors int64) error {
			return charities.AdjustFunding(ctx, charityID, deltaFunding, deltaDonors)
		},
	}, nil
}
