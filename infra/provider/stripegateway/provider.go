// Package stripegateway implements the payment gateway on Stripe. It is
// the only package that touches the Stripe SDK: webhook payloads are
// verified and decoded here into the closed event union the reconciler
// consumes.
package stripegateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/impactlink/impactlink/pkg/config"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
	"github.com/stripe/stripe-go/v82"
)

// Provider implements gateway.Gateway using the Stripe API.
type Provider struct {
	client *stripe.Client
	cfg    *config.Stripe
	logger *slog.Logger
}

// New creates a Provider with the configured API key.
func New(cfg *config.Stripe, logger *slog.Logger) *Provider {
	return &Provider{
		client: stripe.NewClient(cfg.ApiKey),
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePaymentIntent implements gateway.Gateway.
func (p *Provider) CreatePaymentIntent(ctx context.Context, params *gateway.CreateIntentParams) (*gateway.PaymentIntent, error) {
	createParams := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(params.AmountMinorUnits),
		Currency: stripe.String(strings.ToLower(params.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: params.Metadata,
	}
	if params.Description != "" {
		createParams.Description = stripe.String(params.Description)
	}
	if params.ReceiptEmail != "" {
		createParams.ReceiptEmail = stripe.String(params.ReceiptEmail)
	}

	pi, err := p.client.V1PaymentIntents.Create(ctx, createParams)
	if err != nil {
		return nil, p.gatewayError("create payment intent", err)
	}

	p.logger.Info("payment intent created", "payment_intent_id", pi.ID, "amount", params.AmountMinorUnits)
	return &gateway.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapIntentStatus(pi.Status),
	}, nil
}

// RetrievePaymentIntent implements gateway.Gateway.
func (p *Provider) RetrievePaymentIntent(ctx context.Context, id string) (*gateway.PaymentIntent, error) {
	pi, err := p.client.V1PaymentIntents.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, p.gatewayError("retrieve payment intent", err)
	}
	return &gateway.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapIntentStatus(pi.Status),
	}, nil
}

// CreateRefund implements gateway.Gateway. Stripe only accepts its own
// reason enum; anything else rides along as metadata.
func (p *Provider) CreateRefund(ctx context.Context, params *gateway.RefundParams) (*gateway.Refund, error) {
	createParams := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(params.PaymentIntentID),
	}
	if params.AmountMinorUnits > 0 {
		createParams.Amount = stripe.Int64(params.AmountMinorUnits)
	}
	switch params.Reason {
	case "duplicate", "fraudulent", "requested_by_customer":
		createParams.Reason = stripe.String(params.Reason)
	case "":
	default:
		createParams.Metadata = map[string]string{"reason": params.Reason}
	}

	refund, err := p.client.V1Refunds.Create(ctx, createParams)
	if err != nil {
		return nil, p.gatewayError("create refund", err)
	}

	p.logger.Info("refund created", "refund_id", refund.ID, "payment_intent_id", params.PaymentIntentID)
	return &gateway.Refund{ID: refund.ID, Status: string(refund.Status)}, nil
}

// EnsureCustomer implements gateway.Gateway.
func (p *Provider) EnsureCustomer(ctx context.Context, params *gateway.CustomerParams) (string, error) {
	createParams := &stripe.CustomerCreateParams{
		Email: stripe.String(params.Email),
	}
	if params.Name != "" {
		createParams.Name = stripe.String(params.Name)
	}
	if params.PaymentMethodRef != "" {
		createParams.PaymentMethod = stripe.String(params.PaymentMethodRef)
		createParams.InvoiceSettings = &stripe.CustomerCreateInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(params.PaymentMethodRef),
		}
	}

	customer, err := p.client.V1Customers.Create(ctx, createParams)
	if err != nil {
		return "", p.gatewayError("create customer", err)
	}

	p.logger.Info("customer created", "customer_id", customer.ID)
	return customer.ID, nil
}

// CreateSubscription implements gateway.Gateway.
func (p *Provider) CreateSubscription(ctx context.Context, params *gateway.CreateSubscriptionParams) (*gateway.SubscriptionInfo, error) {
	createParams := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(params.CustomerID),
		Items: []*stripe.SubscriptionCreateItemParams{
			{
				PriceData: &stripe.SubscriptionCreateItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(params.Currency)),
					Product:    stripe.String(p.cfg.ProductID),
					UnitAmount: stripe.Int64(params.AmountMinorUnits),
					Recurring: &stripe.SubscriptionCreateItemPriceDataRecurringParams{
						Interval:      stripe.String(params.Interval),
						IntervalCount: stripe.Int64(params.IntervalCount),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: params.Metadata,
	}
	if params.Description != "" {
		createParams.Description = stripe.String(params.Description)
	}

	sub, err := p.client.V1Subscriptions.Create(ctx, createParams)
	if err != nil {
		return nil, p.gatewayError("create subscription", err)
	}

	p.logger.Info("subscription registered", "subscription_id", sub.ID)
	return &gateway.SubscriptionInfo{
		ID:               sub.ID,
		CurrentPeriodEnd: subscriptionPeriodEnd(sub),
	}, nil
}

// PauseSubscription implements gateway.Gateway. Collection is voided
// rather than the registration deleted, so the schedule survives a
// resume.
func (p *Provider) PauseSubscription(ctx context.Context, id string) error {
	params := &stripe.SubscriptionUpdateParams{
		PauseCollection: &stripe.SubscriptionUpdatePauseCollectionParams{
			Behavior: stripe.String("void"),
		},
	}
	if _, err := p.client.V1Subscriptions.Update(ctx, id, params); err != nil {
		return p.gatewayError("pause subscription", err)
	}
	return nil
}

// ResumeSubscription implements gateway.Gateway. Clearing pause_collection
// requires sending the key with an empty value, which the typed params
// cannot express.
func (p *Provider) ResumeSubscription(ctx context.Context, id string) error {
	params := &stripe.SubscriptionUpdateParams{}
	params.AddExtra("pause_collection", "")
	if _, err := p.client.V1Subscriptions.Update(ctx, id, params); err != nil {
		return p.gatewayError("resume subscription", err)
	}
	return nil
}

// CancelSubscription implements gateway.Gateway.
func (p *Provider) CancelSubscription(ctx context.Context, id string) error {
	if _, err := p.client.V1Subscriptions.Cancel(ctx, id, nil); err != nil {
		return p.gatewayError("cancel subscription", err)
	}
	return nil
}

func (p *Provider) gatewayError(op string, err error) error {
	p.logger.Error("stripe call failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", domain.ErrGatewayUnavailable, op, err)
}

func mapIntentStatus(status stripe.PaymentIntentStatus) gateway.IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return gateway.IntentSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return gateway.IntentCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusProcessing:
		return gateway.IntentPending
	default:
		return gateway.IntentFailed
	}
}
