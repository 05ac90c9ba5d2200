// Package donation defines data access for donation rows. All mutations
// flow through the lifecycle manager; rows are never deleted.
package donation

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/dto"
)

// Repository is the donation ledger surface.
type Repository interface {
	// Create inserts a new donation. The payment reference carries a
	// unique constraint; a duplicate maps to domain.ErrAlreadyExists.
	Create(ctx context.Context, create dto.DonationCreate) error

	// Get retrieves a donation by ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.DonationRead, error)

	// GetByPaymentRef retrieves a donation by its external payment
	// reference.
	GetByPaymentRef(ctx context.Context, ref string) (*dto.DonationRead, error)

	// GetByPaymentRefForUpdate is GetByPaymentRef with a row-level lock
	// held until the enclosing transaction commits. Must only be called
	// inside a unit of work.
	GetByPaymentRefForUpdate(ctx context.Context, ref string) (*dto.DonationRead, error)

	// GetForUpdate is Get with a row-level lock, for refund flows keyed
	// by donation ID.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.DonationRead, error)

	// UpdateStatus applies a transition's field updates with a
	// compare-and-swap on the previous status. When the row no longer
	// holds fromStatus the swap fails with domain.ErrConcurrencyConflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus string, update dto.DonationStatusUpdate) error

	// CountCompletedByDonorAndTarget counts the donor's completed
	// donations to the given target (project when set, charity
	// otherwise), for donor-count aggregate maintenance.
	CountCompletedByDonorAndTarget(ctx context.Context, donorID, projectID, charityID uuid.UUID) (int64, error)

	// ListByDonor lists a donor's donations, newest first.
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*dto.DonationRead, error)
}
