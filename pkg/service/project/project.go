// Package project answers read queries about projects and their funding
// progress. The aggregates it reads are maintained incrementally by the
// donation lifecycle; this service never recomputes them.
package project

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/repository"
)

// Service exposes project read queries.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Get retrieves one project with its funding aggregate.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (p *dto.ProjectRead, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Projects()
		if err != nil {
			return err
		}
		p, err = repo.Get(ctx, id)
		return err
	})
	return
}

// Funding summarizes a project's progress toward its goal.
type Funding struct {
	ProjectID      uuid.UUID
	FundingGoal    int64
	CurrentFunding int64
	DonorCount     int64
	Currency       string
	// PercentFunded is CurrentFunding over FundingGoal in whole percent,
	// capped at nothing: overfunded projects report above 100.
	PercentFunded int64
}

// GetFunding retrieves the funding progress of one project.
func (s *Service) GetFunding(ctx context.Context, id uuid.UUID) (*Funding, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f := &Funding{
		ProjectID:      p.ID,
		FundingGoal:    p.FundingGoal,
		CurrentFunding: p.CurrentFunding,
		DonorCount:     p.DonorCount,
		Currency:       p.Currency,
	}
	if p.FundingGoal > 0 {
		f.PercentFunded = p.CurrentFunding * 100 / p.FundingGoal
	}
	return f, nil
}
