// Package webapi provides HTTP handlers and API endpoints for the
// donation platform. It is organized into sub-packages per domain:
// - donation: one-time donation lifecycle endpoints
// - subscription: recurring donation management endpoints
// - project: project funding queries
// - webhook: payment gateway event ingress
package webapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/impactlink/impactlink/pkg/app"
	"github.com/impactlink/impactlink/webapi/common"
	donationweb "github.com/impactlink/impactlink/webapi/donation"
	projectweb "github.com/impactlink/impactlink/webapi/project"
	subscriptionweb "github.com/impactlink/impactlink/webapi/subscription"
	"github.com/impactlink/impactlink/webapi/webhook"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Configure rate limiting middleware
	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        app.Config.RateLimit.MaxRequests,
		Expiration: app.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				// Take the first IP in the chain
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get(
		"/",
		func(c *fiber.Ctx) error {
			return c.SendString("ImpactLink API is running!")
		},
	)

	webhook.Routes(fiberApp, app.Reconciler)
	donationweb.Routes(fiberApp, app.DonationService)
	subscriptionweb.Routes(fiberApp, app.SubscriptionService)
	projectweb.Routes(fiberApp, app.ProjectService)
	return fiberApp
}
