package project_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/service/project"
	"github.com/impactlink/impactlink/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFunding(t *testing.T) {
	t.Parallel()
	store := testutils.NewFakeStore()
	projectID := uuid.New()
	store.SeedProject(dto.ProjectRead{
		ID:             projectID,
		Title:          "Clean Water for Kibera",
		Category:       "healthcare",
		Status:         "active",
		FundingGoal:    1000000,
		CurrentFunding: 250000,
		DonorCount:     42,
		Currency:       "USD",
	})
	svc := project.New(store, slog.Default())

	f, err := svc.GetFunding(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), f.CurrentFunding)
	assert.Equal(t, int64(42), f.DonorCount)
	assert.Equal(t, int64(25), f.PercentFunded)
	assert.Equal(t, "USD", f.Currency)
}

func TestGetFunding_OverfundedReportsAboveHundred(t *testing.T) {
	t.Parallel()
	store := testutils.NewFakeStore()
	projectID := uuid.New()
	store.SeedProject(dto.ProjectRead{
		ID:             projectID,
		Status:         "active",
		FundingGoal:    100000,
		CurrentFunding: 130000,
		Currency:       "USD",
	})
	svc := project.New(store, slog.Default())

	f, err := svc.GetFunding(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, int64(130), f.PercentFunded)
}

func TestGetFunding_ZeroGoal(t *testing.T) {
	t.Parallel()
	store := testutils.NewFakeStore()
	projectID := uuid.New()
	store.SeedProject(dto.ProjectRead{
		ID:             projectID,
		Status:         "active",
		CurrentFunding: 5000,
		Currency:       "USD",
	})
	svc := project.New(store, slog.Default())

	f, err := svc.GetFunding(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.PercentFunded)
}

func TestGetFunding_UnknownProject(t *testing.T) {
	t.Parallel()
	svc := project.New(testutils.NewFakeStore(), slog.Default())

	_, err := svc.GetFunding(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
