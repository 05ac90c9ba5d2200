package dto

import "github.com/google/uuid"

// CharityRead is a read view of a charity, with the funding aggregate
// used when a donation targets the charity directly rather than one of
// its projects.
type CharityRead struct {
	ID             uuid.UUID
	Name           string
	Category       string
	Verified       bool
	CurrentFunding int64
	DonorCount     int64
}
