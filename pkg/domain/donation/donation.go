// Package donation defines the donation entity and its status state
// machine. The only legal edges are pending -> completed, pending ->
// failed, and completed -> refunded; failed and refunded are terminal.
package donation

import (
	"time"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/money"
)

// Status is the lifecycle state of a donation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusRefunded
}

// Outcome is a requested transition, regardless of whether it arrives from
// a synchronous confirmation or a webhook event.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeRefunded  Outcome = "refunded"
)

// Decision is the result of evaluating an outcome against the current
// status.
type Decision struct {
	// Next is the status to move to. Meaningful only when Apply is true.
	Next Status
	// Apply is true when the transition must be durably applied. False
	// means the outcome is a duplicate or late delivery and the current
	// record stands unchanged.
	Apply bool
}

// Decide evaluates the state machine for a requested outcome.
//
// Duplicate deliveries of the already-applied outcome are no-ops, as is a
// late failure event arriving after the donation completed or refunded
// (first transition wins on the pending edge; a completed donation is
// never downgraded). Everything else off the machine's edges is
// ErrInvalidTransition.
func Decide(current Status, outcome Outcome) (Decision, error) {
	switch current {
	case StatusPending:
		switch outcome {
		case OutcomeSucceeded:
			return Decision{Next: StatusCompleted, Apply: true}, nil
		case OutcomeFailed:
			return Decision{Next: StatusFailed, Apply: true}, nil
		}
	case StatusCompleted:
		switch outcome {
		case OutcomeRefunded:
			return Decision{Next: StatusRefunded, Apply: true}, nil
		case OutcomeSucceeded, OutcomeFailed:
			return Decision{}, nil
		}
	case StatusFailed:
		if outcome == OutcomeFailed {
			return Decision{}, nil
		}
	case StatusRefunded:
		if outcome == OutcomeRefunded || outcome == OutcomeFailed {
			return Decision{}, nil
		}
	}
	return Decision{}, domain.ErrInvalidTransition
}

// Target identifies what a donation funds: a project, a charity, or a
// project under a charity. At least one reference is required.
type Target struct {
	ProjectID uuid.UUID
	CharityID uuid.UUID
}

// Validate enforces that the target names at least one entity.
func (t Target) Validate() error {
	if t.ProjectID == uuid.Nil && t.CharityID == uuid.Nil {
		return domain.ErrInvalidTarget
	}
	return nil
}

// Donation is a single gift from a donor to a target. Fee fields are
// derived once at creation and frozen as soon as the status leaves
// pending. Donations are never deleted; a refund is a status.
type Donation struct {
	ID         uuid.UUID
	DonorID    uuid.UUID
	Target     Target
	PaymentRef string

	GrossAmount  money.Amount
	PlatformFee  money.Amount
	ProcessorFee money.Amount
	NetAmount    money.Amount
	Currency     money.Code

	Status    Status
	Recurring bool
	Message   string
	Anonymous bool

	// ImpactScore is the score awarded to the donor when this donation
	// completed. Kept on the record so a refund reverses exactly what
	// was granted, even if the scoring policy changes later.
	ImpactScore int64

	CreatedAt    time.Time
	CompletedAt  *time.Time
	RefundedAt   *time.Time
	RefundReason string
}
