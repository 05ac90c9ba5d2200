// Package subscription defines the recurring-donation entity. A
// subscription mirrors exactly one billing registration at the payment
// gateway; each successful billing cycle spawns one donation.
package subscription

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/money"
)

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

// Frequency is how often a subscription bills.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether f is a supported billing frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Interval maps the frequency onto the gateway's recurring interval plus
// a count, e.g. quarterly bills every 3 months.
func (f Frequency) Interval() (unit string, count int64, err error) {
	switch f {
	case FrequencyWeekly:
		return "week", 1, nil
	case FrequencyMonthly:
		return "month", 1, nil
	case FrequencyQuarterly:
		return "month", 3, nil
	case FrequencyYearly:
		return "year", 1, nil
	}
	return "", 0, fmt.Errorf("unsupported frequency %q", f)
}

// Period approximates one billing period. Used only as a fallback when
// the gateway does not report the period end.
func (f Frequency) Period() time.Duration {
	switch f {
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyQuarterly:
		return 3 * 30 * 24 * time.Hour
	case FrequencyYearly:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// Subscription is a donor's recurring commitment to a project.
// Invariant: at most one active gateway registration exists per
// subscription, and the local Status tracks the registration's pause and
// cancel state.
type Subscription struct {
	ID          uuid.UUID
	DonorID     uuid.UUID
	ProjectID   uuid.UUID
	Amount      money.Amount
	Currency    money.Code
	Frequency   Frequency
	Status      Status
	ExternalRef string
	NextCharge  time.Time
	CreatedAt   time.Time
}
