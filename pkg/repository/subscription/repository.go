// Package subscription defines data access for recurring donations.
package subscription

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/dto"
)

// Repository is the subscription storage surface.
type Repository interface {
	// Create inserts a new subscription.
	Create(ctx context.Context, create dto.SubscriptionCreate) error

	// Get retrieves a subscription by ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.SubscriptionRead, error)

	// GetByExternalRef retrieves a subscription by the gateway's
	// registration ID.
	GetByExternalRef(ctx context.Context, ref string) (*dto.SubscriptionRead, error)

	// Update applies optional field updates.
	Update(ctx context.Context, id uuid.UUID, update dto.SubscriptionUpdate) error

	// ListByDonor lists a donor's subscriptions, newest first.
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]*dto.SubscriptionRead, error)
}
