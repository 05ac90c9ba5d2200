package dto

import (
	"time"

	"github.com/google/uuid"
)

// DonationRead is a read-optimized view of a donation for queries, API
// responses, and event payloads. Amounts are minor units.
type DonationRead struct {
	ID           uuid.UUID
	DonorID      uuid.UUID
	ProjectID    uuid.UUID
	CharityID    uuid.UUID
	PaymentRef   string
	GrossAmount  int64
	PlatformFee  int64
	ProcessorFee int64
	NetAmount    int64
	Currency     string
	Status       string
	Recurring    bool
	Message      string
	Anonymous    bool
	ImpactScore  int64
	CreatedAt    time.Time
	CompletedAt  *time.Time
	RefundedAt   *time.Time
	RefundReason string
}

// DonationCreate is the payload for inserting a new donation row. Fee
// fields are computed by the lifecycle manager before persistence, never
// by storage hooks.
type DonationCreate struct {
	ID           uuid.UUID
	DonorID      uuid.UUID
	ProjectID    uuid.UUID
	CharityID    uuid.UUID
	PaymentRef   string
	GrossAmount  int64
	PlatformFee  int64
	ProcessorFee int64
	NetAmount    int64
	Currency     string
	Status       string
	Recurring    bool
	Message      string
	Anonymous    bool
}

// DonationStatusUpdate carries the fields stamped by a lifecycle
// transition. Applied with a compare-and-swap on the previous status.
type DonationStatusUpdate struct {
	Status       string
	ImpactScore  *int64
	CompletedAt  *time.Time
	RefundedAt   *time.Time
	RefundReason *string
}
