package dto

import "github.com/google/uuid"

// ProjectRead is a read view of a charity project, including the
// incrementally maintained funding aggregate. CurrentFunding and
// DonorCount are mutated only inside lifecycle transitions; there is no
// recompute-by-aggregation path.
type ProjectRead struct {
	ID             uuid.UUID
	CharityID      uuid.UUID
	Title          string
	Category       string
	Status         string
	FundingGoal    int64
	CurrentFunding int64
	DonorCount     int64
	Currency       string
}

// DonorRead is a read view of a donor account.
type DonorRead struct {
	ID            uuid.UUID
	Email         string
	Name          string
	ImpactScore   int64
	GatewayCustID string
}
