// Package project exposes project funding queries over HTTP.
package project

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	projsvc "github.com/impactlink/impactlink/pkg/service/project"
	"github.com/impactlink/impactlink/webapi/common"
)

// Routes registers HTTP routes for project queries.
func Routes(app *fiber.App, svc *projsvc.Service) {
	app.Get("/api/v1/projects/:id/funding", GetFunding(svc))
}

// GetFunding returns a Fiber handler reporting a project's funding
// progress.
func GetFunding(svc *projsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid project ID", err, fiber.StatusBadRequest)
		}

		f, err := svc.GetFunding(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get project funding", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Funding fetched", FundingDTO{
			ProjectID:      f.ProjectID.String(),
			FundingGoal:    f.FundingGoal,
			CurrentFunding: f.CurrentFunding,
			DonorCount:     f.DonorCount,
			Currency:       f.Currency,
			PercentFunded:  f.PercentFunded,
		})
	}
}
