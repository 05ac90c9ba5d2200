// Package charity defines data access for charities and the funding
// aggregate used by charity-targeted donations.
package charity

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/dto"
)

// Repository is the charity storage surface.
type Repository interface {
	// Get retrieves a charity with its funding aggregate.
	Get(ctx context.Context, id uuid.UUID) (*dto.CharityRead, error)

	// AdjustFunding atomically increments currentFunding and donorCount.
	// Called only inside the same unit of work as the donation status
	// change it accounts for.
	AdjustFunding(ctx context.Context, id uuid.UUID, deltaFunding, deltaDonors int64) error
}
