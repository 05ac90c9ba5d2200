package project_test

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/webapi/common"
	webtest "github.com/impactlink/impactlink/webapi/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectFunding(t *testing.T) {
	t.Parallel()
	app, store, _ := webtest.SetupTestApp(t)
	projectID := uuid.New()
	store.SeedProject(dto.ProjectRead{
		ID:             projectID,
		Category:       "healthcare",
		Status:         "active",
		FundingGoal:    1000000,
		CurrentFunding: 250000,
		DonorCount:     42,
		Currency:       "USD",
	})

	resp := webtest.MakeRequest(t, app, "GET",
		"/api/v1/projects/"+projectID.String()+"/funding", "")
	defer resp.Body.Close() //nolint: errcheck
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope common.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(250000), data["current_funding"])
	assert.Equal(t, float64(42), data["donor_count"])
	assert.Equal(t, float64(25), data["percent_funded"])
}

func TestGetProjectFunding_NotFound(t *testing.T) {
	t.Parallel()
	app, _, _ := webtest.SetupTestApp(t)

	resp := webtest.MakeRequest(t, app, "GET",
		"/api/v1/projects/"+uuid.NewString()+"/funding", "")
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetProjectFunding_BadID(t *testing.T) {
	t.Parallel()
	app, _, _ := webtest.SetupTestApp(t)

	resp := webtest.MakeRequest(t, app, "GET", "/api/v1/projects/nope/funding", "")
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
