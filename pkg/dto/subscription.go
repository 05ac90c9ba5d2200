package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionRead is a read-optimized view of a recurring donation.
type SubscriptionRead struct {
	ID          uuid.UUID
	DonorID     uuid.UUID
	ProjectID   uuid.UUID
	Amount      int64
	Currency    string
	Frequency   string
	Status      string
	ExternalRef string
	NextCharge  time.Time
	CreatedAt   time.Time
}

// SubscriptionCreate is the payload for inserting a new subscription.
type SubscriptionCreate struct {
	ID          uuid.UUID
	DonorID     uuid.UUID
	ProjectID   uuid.UUID
	Amount      int64
	Currency    string
	Frequency   string
	Status      string
	ExternalRef string
	NextCharge  time.Time
}

// SubscriptionUpdate carries optional field updates for a subscription.
type SubscriptionUpdate struct {
	Status     *string
	NextCharge *time.Time
}
