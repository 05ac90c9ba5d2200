// Package donor defines data access for donor accounts.
package donor

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/dto"
)

// Repository is the donor storage surface.
type Repository interface {
	// Get retrieves a donor by ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.DonorRead, error)

	// AdjustImpactScore atomically increments the donor's impact score
	// by delta (negative on refund).
	AdjustImpactScore(ctx context.Context, id uuid.UUID, delta int64) error

	// SetGatewayCustomer records the payment gateway's customer ID for
	// the donor. Idempotent.
	SetGatewayCustomer(ctx context.Context, id uuid.UUID, customerID string) error
}
