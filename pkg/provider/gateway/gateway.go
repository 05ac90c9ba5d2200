// Package gateway defines the payment-processor client consumed by the
// donation core. Implementations wrap the processor SDK; the core only
// sees these types, which keeps every service testable against mocks.
package gateway

import "context"

// Gateway is the request/response surface of the external payment
// processor plus webhook event verification. Every call is a blocking
// I/O boundary and must honor the context deadline.
type Gateway interface {
	// CreatePaymentIntent registers intent to capture a payment and
	// returns the processor's reference and a client secret the donor's
	// browser uses to complete payment out-of-band.
	CreatePaymentIntent(ctx context.Context, params *CreateIntentParams) (*PaymentIntent, error)

	// RetrievePaymentIntent fetches the current processor-side state of
	// an intent.
	RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)

	// CreateRefund refunds a captured payment, fully when
	// AmountMinorUnits is zero.
	CreateRefund(ctx context.Context, params *RefundParams) (*Refund, error)

	// EnsureCustomer returns the processor customer ID for a donor,
	// creating the customer and attaching the payment method if absent.
	EnsureCustomer(ctx context.Context, params *CustomerParams) (string, error)

	// CreateSubscription registers a recurring billing schedule.
	CreateSubscription(ctx context.Context, params *CreateSubscriptionParams) (*SubscriptionInfo, error)

	// PauseSubscription voids collection on the registration. Idempotent.
	PauseSubscription(ctx context.Context, id string) error

	// ResumeSubscription clears a paused registration. Idempotent.
	ResumeSubscription(ctx context.Context, id string) error

	// CancelSubscription permanently cancels the registration. Idempotent.
	CancelSubscription(ctx context.Context, id string) error

	// VerifyEvent authenticates a raw webhook payload against its
	// signature header and decodes it into the closed Event union.
	// Returns domain.ErrSignatureVerification on mismatch.
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
