// Package donation exposes the donation lifecycle over HTTP.
package donation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/money"
	donsvc "github.com/impactlink/impactlink/pkg/service/donation"
	"github.com/impactlink/impactlink/webapi/common"
)

// Routes registers HTTP routes for donation operations.
func Routes(app *fiber.App, svc *donsvc.Service) {
	app.Post("/api/v1/donations", Create(svc))
	app.Get("/api/v1/donations/:id", Get(svc))
	app.Post("/api/v1/donations/:id/refund", Refund(svc))
	app.Get("/api/v1/donors/:id/donations", ListByDonor(svc))
}

// Create returns a Fiber handler that initiates a donation and hands the
// payment client secret back to the caller.
func Create(svc *donsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateRequest](c)
		if err != nil {
			return nil
		}

		donorID, err := uuid.Parse(input.DonorID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid donor ID", err, fiber.StatusBadRequest)
		}
		projectID, charityID, err := parseTarget(input.ProjectID, input.CharityID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid target ID", err, fiber.StatusBadRequest)
		}

		amount, err := money.FromFloat(input.Amount, money.Code(strings.ToUpper(input.Currency)))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}

		donation, clientSecret, err := svc.Initiate(c.Context(), donsvc.InitiateParams{
			DonorID:   donorID,
			ProjectID: projectID,
			CharityID: charityID,
			Amount:    amount,
			Message:   input.Message,
			Anonymous: input.Anonymous,
		})
		if err != nil {
			log.Errorf("Failed to initiate donation: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to initiate donation", err)
		}

		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Donation initiated", CreateResponse{
			Donation:     toDTO(donation),
			ClientSecret: clientSecret,
		})
	}
}

// Get returns a Fiber handler for fetching one donation by ID.
func Get(svc *donsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid donation ID", err, fiber.StatusBadRequest)
		}

		donation, err := svc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get donation", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Donation fetched", toDTO(donation))
	}
}

// Refund returns a Fiber handler that refunds a completed donation.
func Refund(svc *donsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid donation ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[RefundRequest](c)
		if err != nil {
			return nil
		}

		if err := svc.Refund(c.Context(), id, input.Reason); err != nil {
			log.Errorf("Failed to refund donation %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Failed to refund donation", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Donation refunded", nil)
	}
}

// ListByDonor returns a Fiber handler for a donor's donation history.
func ListByDonor(svc *donsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		donorID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid donor ID", err, fiber.StatusBadRequest)
		}

		donations, err := svc.ListByDonor(c.Context(), donorID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list donations", err)
		}

		dtos := make([]*DonationDTO, 0, len(donations))
		for _, d := range donations {
			dtos = append(dtos, toDTO(d))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Donations fetched", dtos)
	}
}

func parseTarget(projectID, charityID string) (uuid.UUID, uuid.UUID, error) {
	var pid, cid uuid.UUID
	var err error
	if projectID != "" {
		if pid, err = uuid.Parse(projectID); err != nil {
			return uuid.Nil, uuid.Nil, err
		}
	}
	if charityID != "" {
		if cid, err = uuid.Parse(charityID); err != nil {
			return uuid.Nil, uuid.Nil, err
		}
	}
	return pid, cid, nil
}

func toDTO(d *dto.DonationRead) *DonationDTO {
	out := &DonationDTO{
		ID:           d.ID.String(),
		DonorID:      d.DonorID.String(),
		PaymentRef:   d.PaymentRef,
		GrossAmount:  d.GrossAmount,
		PlatformFee:  d.PlatformFee,
		ProcessorFee: d.ProcessorFee,
		NetAmount:    d.NetAmount,
		Currency:     d.Currency,
		Status:       d.Status,
		Recurring:    d.Recurring,
		Message:      d.Message,
		Anonymous:    d.Anonymous,
		ImpactScore:  d.ImpactScore,
		CreatedAt:    d.CreatedAt,
		CompletedAt:  d.CompletedAt,
		RefundedAt:   d.RefundedAt,
		RefundReason: d.RefundReason,
	}
	if d.ProjectID != uuid.Nil {
		out.ProjectID = d.ProjectID.String()
	}
	if d.CharityID != uuid.Nil {
		out.CharityID = d.CharityID.String()
	}
	return out
}
