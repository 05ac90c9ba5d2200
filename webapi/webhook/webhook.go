// Package webhook receives payment gateway event deliveries.
package webhook

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/service/reconciler"
)

// Routes registers the gateway webhook endpoint.
func Routes(app *fiber.App, svc *reconciler.Service) {
	app.Post("/api/v1/webhooks/stripe", StripeWebhookHandler(svc))
}

// StripeWebhookHandler handles incoming Stripe webhook events. A 2xx
// acknowledges the delivery; 400 tells Stripe the payload was rejected;
// any other error asks for a redelivery. Events that contradict recorded
// donation history are acknowledged after logging, since redelivering
// them can never succeed.
func StripeWebhookHandler(svc *reconciler.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get("Stripe-Signature")
		if signature == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing Stripe-Signature header",
			})
		}

		payload := c.Body()
		if len(payload) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Empty request body",
			})
		}

		if err := svc.Handle(c.Context(), payload, signature); err != nil {
			if errors.Is(err, domain.ErrSignatureVerification) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid signature",
				})
			}
			// A transition the state machine rejects is permanent: the
			// event contradicts recorded history and no redelivery can
			// make it apply. Acknowledge it so Stripe stops retrying.
			if errors.Is(err, domain.ErrInvalidTransition) {
				log.Warnf("Discarding contradictory webhook event: %v", err)
				return c.SendStatus(fiber.StatusOK)
			}
			// Non-2xx makes Stripe redeliver; the reconciler is idempotent
			// so a retry after a transient failure is safe.
			log.Errorf("Failed to process webhook event: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error processing webhook",
			})
		}

		return c.SendStatus(fiber.StatusOK)
	}
}
