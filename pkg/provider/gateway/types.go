package gateway

import "time"

// Metadata keys carried on payment intents so webhook events can be
// reconciled back to local records without extra lookups.
const (
	MetaDonorID   = "donor_id"
	MetaProjectID = "project_id"
	MetaCharityID = "charity_id"
)

// CreateIntentParams holds the inputs for CreatePaymentIntent.
type CreateIntentParams struct {
	AmountMinorUnits int64
	Currency         string
	Description      string
	ReceiptEmail     string
	Metadata         map[string]string
}

// IntentStatus is the processor-side state of a payment intent.
type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentSucceeded IntentStatus = "succeeded"
	IntentFailed    IntentStatus = "failed"
	IntentCanceled  IntentStatus = "canceled"
)

// PaymentIntent is the processor's view of a payment in flight.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
}

// RefundParams holds the inputs for CreateRefund. AmountMinorUnits of
// zero means a full refund.
type RefundParams struct {
	PaymentIntentID  string
	AmountMinorUnits int64
	Reason           string
}

// Refund is the processor's record of a refund.
type Refund struct {
	ID     string
	Status string
}

// CustomerParams identifies a donor at the processor.
type CustomerParams struct {
	Email            string
	Name             string
	PaymentMethodRef string
}

// CreateSubscriptionParams registers a recurring billing schedule.
type CreateSubscriptionParams struct {
	CustomerID       string
	AmountMinorUnits int64
	Currency         string
	Interval         string
	IntervalCount    int64
	Description      string
	Metadata         map[string]string
}

// SubscriptionInfo is the processor's view of a registration.
type SubscriptionInfo struct {
	ID               string
	CurrentPeriodEnd time.Time
}

// EventKind enumerates the webhook event types this system acts on. The
// processor sends many more; everything else maps to EventUnrecognized
// and is acknowledged without action.
type EventKind string

const (
	EventPaymentSucceeded    EventKind = "payment_succeeded"
	EventPaymentFailed       EventKind = "payment_failed"
	EventChargeRefunded      EventKind = "charge_refunded"
	EventBillingSucceeded    EventKind = "billing_succeeded"
	EventBillingFailed       EventKind = "billing_failed"
	EventSubscriptionDeleted EventKind = "subscription_deleted"
	EventUnrecognized        EventKind = "unrecognized"
)

// Event is the decoded, verified form of a webhook delivery. Decoding
// happens exactly once, at the gateway boundary.
type Event struct {
	// ID is the processor's event identifier, used for duplicate
	// detection across redeliveries.
	ID   string
	Kind EventKind

	// PaymentIntentID is set for payment and billing events.
	PaymentIntentID string
	// SubscriptionID is set for billing and subscription events.
	SubscriptionID string

	// AmountMinorUnits and Currency are set for billing events, taken
	// from the underlying invoice.
	AmountMinorUnits int64
	Currency         string
	// PeriodEnd is the end of the billing period just paid, for
	// advancing the next charge date.
	PeriodEnd time.Time

	OccurredAt time.Time
}
