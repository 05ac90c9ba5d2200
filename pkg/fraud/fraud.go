// Package fraud defines the pluggable gate the lifecycle manager
// consults before initiating a donation. Scoring heuristics live behind
// the interface; the core only honors the verdict.
package fraud

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/money"
)

// Check describes the donation under evaluation.
type Check struct {
	DonorID   uuid.UUID
	ProjectID uuid.UUID
	Amount    money.Amount
	Currency  money.Code
}

// Verdict is the gate's decision.
type Verdict struct {
	Allow bool
	// RiskScore and Flags are advisory, recorded for review.
	RiskScore int
	Flags     []string
}

// Gate screens donations before a payment intent is created.
type Gate interface {
	Screen(ctx context.Context, c Check) (Verdict, error)
}

// AllowAll is the default gate: every donation passes. Used when no
// fraud screening backend is configured.
type AllowAll struct{}

// Screen implements Gate.
func (AllowAll) Screen(context.Context, Check) (Verdict, error) {
	return Verdict{Allow: true}, nil
}
