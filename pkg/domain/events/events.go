// Package events holds the domain events emitted after a committed
// lifecycle transition. They carry enough denormalized data for fan-out
// handlers (emails, notifications) to run without re-reading the ledger.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/money"
)

// Event type registration keys.
const (
	TypeDonationCompleted         = "donation.completed"
	TypeDonationFailed            = "donation.failed"
	TypeDonationRefunded          = "donation.refunded"
	TypeSubscriptionActivated     = "subscription.activated"
	TypeSubscriptionBillingFailed = "subscription.billing_failed"
	TypeSubscriptionCancelled     = "subscription.cancelled"
)

// DonationCompleted fires after a donation moved pending -> completed and
// the funding aggregate update committed with it.
type DonationCompleted struct {
	DonationID  uuid.UUID
	DonorID     uuid.UUID
	ProjectID   uuid.UUID
	CharityID   uuid.UUID
	GrossAmount money.Amount
	NetAmount   money.Amount
	Currency    money.Code
	ImpactScore int64
	Recurring   bool
	CompletedAt time.Time
}

func (DonationCompleted) Type() string { return TypeDonationCompleted }

// DonationFailed fires after a donation moved pending -> failed.
type DonationFailed struct {
	DonationID  uuid.UUID
	DonorID     uuid.UUID
	ProjectID   uuid.UUID
	GrossAmount money.Amount
	Currency    money.Code
	FailedAt    time.Time
}

func (DonationFailed) Type() string { return TypeDonationFailed }

// DonationRefunded fires after a donation moved completed -> refunded and
// the aggregate decrement committed with it.
type DonationRefunded struct {
	DonationID uuid.UUID
	DonorID    uuid.UUID
	ProjectID  uuid.UUID
	NetAmount  money.Amount
	Currency   money.Code
	Reason     string
	RefundedAt time.Time
}

func (DonationRefunded) Type() string { return TypeDonationRefunded }

// SubscriptionActivated fires when a recurring donation is set up.
type SubscriptionActivated struct {
	SubscriptionID uuid.UUID
	DonorID        uuid.UUID
	ProjectID      uuid.UUID
	Amount         money.Amount
	Currency       money.Code
	Frequency      string
	NextCharge     time.Time
}

func (SubscriptionActivated) Type() string { return TypeSubscriptionActivated }

// SubscriptionBillingFailed fires when a billing cycle fails. The
// subscription stays active; the gateway retries on its own schedule.
type SubscriptionBillingFailed struct {
	SubscriptionID uuid.UUID
	DonorID        uuid.UUID
	ProjectID      uuid.UUID
	Amount         money.Amount
	Currency       money.Code
	FailedAt       time.Time
}

func (SubscriptionBillingFailed) Type() string { return TypeSubscriptionBillingFailed }

// SubscriptionCancelled fires when a subscription is cancelled, locally
// or by the gateway after exhausting billing retries.
type SubscriptionCancelled struct {
	SubscriptionID uuid.UUID
	DonorID        uuid.UUID
	ProjectID      uuid.UUID
	CancelledAt    time.Time
}

func (SubscriptionCancelled) Type() string { return TypeSubscriptionCancelled }
