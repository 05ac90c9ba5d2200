// Package subscription exposes recurring donation management over HTTP.
package subscription

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	subdomain "github.com/impactlink/impactlink/pkg/domain/subscription"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/money"
	subsvc "github.com/impactlink/impactlink/pkg/service/subscription"
	"github.com/impactlink/impactlink/webapi/common"
)

// Routes registers HTTP routes for subscription operations.
func Routes(app *fiber.App, svc *subsvc.Service) {
	app.Post("/api/v1/subscriptions", Create(svc))
	app.Get("/api/v1/subscriptions/:id", Get(svc))
	app.Post("/api/v1/subscriptions/:id/pause", Pause(svc))
	app.Post("/api/v1/subscriptions/:id/resume", Resume(svc))
	app.Delete("/api/v1/subscriptions/:id", Cancel(svc))
	app.Get("/api/v1/donors/:id/subscriptions", ListByDonor(svc))
}

// Create returns a Fiber handler that enrolls a donor in a recurring
// donation.
func Create(svc *subsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateRequest](c)
		if err != nil {
			return nil
		}

		donorID, err := uuid.Parse(input.DonorID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid donor ID", err, fiber.StatusBadRequest)
		}
		projectID, err := uuid.Parse(input.ProjectID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid project ID", err, fiber.StatusBadRequest)
		}
		amount, err := money.FromFloat(input.Amount, money.Code(strings.ToUpper(input.Currency)))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}

		sub, err := svc.Create(c.Context(), subsvc.CreateParams{
			DonorID:          donorID,
			ProjectID:        projectID,
			Amount:           amount,
			Frequency:        subdomain.Frequency(input.Frequency),
			PaymentMethodRef: input.PaymentMethodRef,
		})
		if err != nil {
			log.Errorf("Failed to create subscription: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create subscription", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Subscription created", toDTO(sub))
	}
}

// Get returns a Fiber handler for fetching one subscription by ID.
func Get(svc *subsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid subscription ID", err, fiber.StatusBadRequest)
		}

		sub, err := svc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get subscription", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Subscription fetched", toDTO(sub))
	}
}

// Pause returns a Fiber handler that suspends billing on a subscription.
func Pause(svc *subsvc.Service) fiber.Handler {
	return statusChange("paused", svc.Pause)
}

// Resume returns a Fiber handler that restarts billing on a paused
// subscription.
func Resume(svc *subsvc.Service) fiber.Handler {
	return statusChange("resumed", svc.Resume)
}

// Cancel returns a Fiber handler that permanently ends a subscription.
func Cancel(svc *subsvc.Service) fiber.Handler {
	return statusChange("cancelled", svc.Cancel)
}

// ListByDonor returns a Fiber handler for a donor's subscriptions.
func ListByDonor(svc *subsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		donorID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid donor ID", err, fiber.StatusBadRequest)
		}

		subs, err := svc.ListByDonor(c.Context(), donorID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list subscriptions", err)
		}

		dtos := make([]*SubscriptionDTO, 0, len(subs))
		for _, s := range subs {
			dtos = append(dtos, toDTO(s))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Subscriptions fetched", dtos)
	}
}

func statusChange(verb string, op func(ctx context.Context, id uuid.UUID) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid subscription ID", err, fiber.StatusBadRequest)
		}

		if err := op(c.Context(), id); err != nil {
			log.Errorf("Failed to change subscription %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Failed to update subscription", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Subscription "+verb, nil)
	}
}

func toDTO(s *dto.SubscriptionRead) *SubscriptionDTO {
	return &SubscriptionDTO{
		ID:         s.ID.String(),
		DonorID:    s.DonorID.String(),
		ProjectID:  s.ProjectID.String(),
		Amount:     s.Amount,
		Currency:   s.Currency,
		Frequency:  s.Frequency,
		Status:     s.Status,
		NextCharge: s.NextCharge,
		CreatedAt:  s.CreatedAt,
	}
}
