package stripegateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/impactlink/impactlink/pkg/provider/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func stripeEvent(t *testing.T, id, eventType, raw string) stripe.Event {
	t.Helper()
	return stripe.Event{
		ID:      id,
		Type:    stripe.EventType(eventType),
		Created: 1756710000,
		Data:    &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestDecodeEvent_PaymentIntentSucceeded(t *testing.T) {
	t.Parallel()
	evt, err := decodeEvent(stripeEvent(t, "evt_1", "payment_intent.succeeded", `{"id":"pi_123"}`))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventPaymentSucceeded, evt.Kind)
	assert.Equal(t, "pi_123", evt.PaymentIntentID)
	assert.Equal(t, time.Unix(1756710000, 0).UTC(), evt.OccurredAt)
}

func TestDecodeEvent_PaymentIntentFailed(t *testing.T) {
	t.Parallel()
	evt, err := decodeEvent(stripeEvent(t, "evt_1", "payment_intent.payment_failed", `{"id":"pi_123"}`))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventPaymentFailed, evt.Kind)
	assert.Equal(t, "pi_123", evt.PaymentIntentID)
}

func TestDecodeEvent_ChargeRefunded(t *testing.T) {
	t.Parallel()
	evt, err := decodeEvent(stripeEvent(t, "evt_1", "charge.refunded", `{"id":"ch_1","payment_intent":"pi_123"}`))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventChargeRefunded, evt.Kind)
	assert.Equal(t, "pi_123", evt.PaymentIntentID)
}

func TestDecodeEvent_InvoicePaymentSucceeded(t *testing.T) {
	t.Parallel()
	raw := `{
		"id": "in_1",
		"subscription": "sub_1",
		"payment_intent": "pi_cycle_1",
		"amount_paid": 2500,
		"currency": "usd",
		"lines": {"data": [{"period": {"end": 1759302000}}]}
	}`
	evt, err := decodeEvent(stripeEvent(t, "evt_1", "invoice.payment_succeeded", raw))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventBillingSucceeded, evt.Kind)
	assert.Equal(t, "sub_1", evt.SubscriptionID)
	assert.Equal(t, "pi_cycle_1", evt.PaymentIntentID)
	assert.Equal(t, int64(2500), evt.AmountMinorUnits)
	assert.Equal(t, "USD", evt.Currency)
	assert.Equal(t, time.Unix(1759302000, 0).UTC(), evt.PeriodEnd)
}

func TestDecodeEvent_InvoiceWithoutPaymentIntentFallsBackToInvoiceID(t *testing.T) {
	t.Parallel()
	raw := `{
		"id": "in_1",
		"amount_paid": 2500,
		"currency": "usd",
		"parent": {"subscription_details": {"subscription": "sub_1"}}
	}`
	evt, err := decodeEvent(stripeEvent(t, "evt_1", "invoice.payment_succeeded", raw))
	require.NoError(t, err)
	assert.Equal(t, "sub_1", evt.SubscriptionID)
	assert.Equal(t, "in_1", evt.PaymentIntentID)
	assert.True(t, evt.PeriodEnd.IsZero())
}

func TestDecodeEvent_InvoicePaymentFailed(t *testing.T) {
	t.Parallel()
	evt, err := decodeEvent(stripeEvent(t, "evt_1", "invoice.payment_failed", `{"id":"in_1","subscription":"sub_1"}`))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventBillingFailed, evt.Kind)
	assert.Equal(t, "sub_1", evt.SubscriptionID)
}

func TestDecodeEvent_SubscriptionDeleted(t *testing.T) {
	t.Parallel()
	evt, err := decodeEvent(stripeEvent(t, "evt_1", "customer.subscription.deleted", `{"id":"sub_1"}`))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventSubscriptionDeleted, evt.Kind)
	assert.Equal(t, "sub_1", evt.SubscriptionID)
}

func TestDecodeEvent_UnrecognizedType(t *testing.T) {
	t.Parallel()
	evt, err := decodeEvent(stripeEvent(t, "evt_1", "customer.created", `{"id":"cus_1"}`))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventUnrecognized, evt.Kind)
}

func TestMapIntentStatus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, gateway.IntentSucceeded, mapIntentStatus(stripe.PaymentIntentStatusSucceeded))
	assert.Equal(t, gateway.IntentCanceled, mapIntentStatus(stripe.PaymentIntentStatusCanceled))
	assert.Equal(t, gateway.IntentPending, mapIntentStatus(stripe.PaymentIntentStatusProcessing))
	assert.Equal(t, gateway.IntentPending, mapIntentStatus(stripe.PaymentIntentStatusRequiresAction))
}
