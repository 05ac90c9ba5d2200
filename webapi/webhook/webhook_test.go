package webhook_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
	webtest "github.com/impactlink/impactlink/webapi/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWebhook_MissingSignature(t *testing.T) {
	t.Parallel()
	app, _, _ := webtest.SetupTestApp(t)

	resp := webtest.MakeRequest(t, app, "POST", "/api/v1/webhooks/stripe", `{"id":"evt_1"}`)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_EmptyBody(t *testing.T) {
	t.Parallel()
	app, _, _ := webtest.SetupTestApp(t)

	resp := webtest.MakeRequest(t, app, "POST", "/api/v1/webhooks/stripe", "",
		map[string]string{"Stripe-Signature": "t=1,v1=sig"})
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	t.Parallel()
	app, _, gw := webtest.SetupTestApp(t)
	gw.On("VerifyEvent", mock.Anything, "t=1,v1=bad").
		Return(nil, domain.ErrSignatureVerification)

	resp := webtest.MakeRequest(t, app, "POST", "/api/v1/webhooks/stripe", `{"id":"evt_1"}`,
		map[string]string{"Stripe-Signature": "t=1,v1=bad"})
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_PaymentSucceededCompletesDonation(t *testing.T) {
	t.Parallel()
	app, store, gw := webtest.SetupTestApp(t)
	donorID := uuid.New()
	projectID := uuid.New()
	store.SeedDonor(dto.DonorRead{ID: donorID, Email: "alice@example.com"})
	store.SeedProject(dto.ProjectRead{
		ID: projectID, Category: "education", Status: "active", Currency: "USD",
	})
	donationID := uuid.New()
	store.SeedDonation(dto.DonationRead{
		ID: donationID, DonorID: donorID, ProjectID: projectID,
		PaymentRef: "pi_1", GrossAmount: 10000, PlatformFee: 500,
		ProcessorFee: 320, NetAmount: 9180, Currency: "USD", Status: "pending",
	})
	gw.On("VerifyEvent", mock.Anything, "t=1,v1=good").Return(&gateway.Event{
		ID:              "evt_1",
		Kind:            gateway.EventPaymentSucceeded,
		PaymentIntentID: "pi_1",
	}, nil)

	resp := webtest.MakeRequest(t, app, "POST", "/api/v1/webhooks/stripe", `{"id":"evt_1"}`,
		map[string]string{"Stripe-Signature": "t=1,v1=good"})
	defer resp.Body.Close() //nolint: errcheck
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "completed", store.DonationRows[donationID].Status)
	assert.Equal(t, int64(9180), store.ProjectRows[projectID].CurrentFunding)
}

func TestWebhook_UnknownReferenceAcknowledged(t *testing.T) {
	t.Parallel()
	app, _, gw := webtest.SetupTestApp(t)
	gw.On("VerifyEvent", mock.Anything, "t=1,v1=good").Return(&gateway.Event{
		ID:              "evt_1",
		Kind:            gateway.EventPaymentSucceeded,
		PaymentIntentID: "pi_nobody",
	}, nil)

	resp := webtest.MakeRequest(t, app, "POST", "/api/v1/webhooks/stripe", `{"id":"evt_1"}`,
		map[string]string{"Stripe-Signature": "t=1,v1=good"})
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhook_ContradictoryEventAcknowledged(t *testing.T) {
	t.Parallel()
	app, store, gw := webtest.SetupTestApp(t)
	id := uuid.New()
	store.SeedDonation(dto.DonationRead{
		ID: id, DonorID: uuid.New(), ProjectID: uuid.New(),
		PaymentRef: "pi_1", GrossAmount: 10000, Currency: "USD", Status: "failed",
	})
	gw.On("VerifyEvent", mock.Anything, "t=1,v1=good").Return(&gateway.Event{
		ID:              "evt_1",
		Kind:            gateway.EventPaymentSucceeded,
		PaymentIntentID: "pi_1",
	}, nil)

	resp := webtest.MakeRequest(t, app, "POST", "/api/v1/webhooks/stripe", `{"id":"evt_1"}`,
		map[string]string{"Stripe-Signature": "t=1,v1=good"})
	defer resp.Body.Close() //nolint: errcheck
	// A success event for a failed donation contradicts recorded
	// history; redelivery can never make it apply, so it is acked.
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "failed", store.DonationRows[id].Status)
}
