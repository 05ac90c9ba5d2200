// Package project defines data access for charity projects and their
// funding aggregates.
package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/dto"
)

// Repository is the project storage surface.
type Repository interface {
	// Get retrieves a project with its funding aggregate.
	Get(ctx context.Context, id uuid.UUID) (*dto.ProjectRead, error)

	// AdjustFunding atomically increments currentFunding by deltaFunding
	// and donorCount by deltaDonors. Called only inside the same unit of
	// work as the donation status change it accounts for.
	AdjustFunding(ctx context.Context, id uuid.UUID, deltaFunding, deltaDonors int64) error
}
