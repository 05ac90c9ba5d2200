package stripegateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// VerifyEvent implements gateway.Gateway. The payload is authenticated
// against the signing secret and decoded exactly once; everything past
// this point works on the closed event union.
func (p *Provider) VerifyEvent(payload []byte, signature string) (*gateway.Event, error) {
	if p.cfg.SigningSecret == "" {
		return nil, fmt.Errorf("%w: webhook signing secret not configured", domain.ErrSignatureVerification)
	}

	event, err := webhook.ConstructEvent(payload, signature, p.cfg.SigningSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSignatureVerification, err)
	}

	decoded, err := decodeEvent(event)
	if err != nil {
		return nil, err
	}
	p.logger.Info("webhook event verified",
		"event_id", decoded.ID, "stripe_type", event.Type, "kind", decoded.Kind)
	return decoded, nil
}

// invoicePayload is the slice of a Stripe invoice this system reads.
// Decoding into a local struct keeps the package stable across the
// SDK's invoice shape changes.
type invoicePayload struct {
	ID            string `json:"id"`
	Subscription  string `json:"subscription"`
	PaymentIntent string `json:"payment_intent"`
	AmountPaid    int64  `json:"amount_paid"`
	Currency      string `json:"currency"`
	Parent        struct {
		SubscriptionDetails struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
	Lines struct {
		Data []struct {
			Period struct {
				End int64 `json:"end"`
			} `json:"period"`
		} `json:"data"`
	} `json:"lines"`
}

func (inv *invoicePayload) subscriptionID() string {
	if inv.Subscription != "" {
		return inv.Subscription
	}
	return inv.Parent.SubscriptionDetails.Subscription
}

// paymentRef is the reference billing donations are keyed on. Older API
// versions carry the payment intent on the invoice; when absent the
// invoice ID is just as unique.
func (inv *invoicePayload) paymentRef() string {
	if inv.PaymentIntent != "" {
		return inv.PaymentIntent
	}
	return inv.ID
}

func (inv *invoicePayload) periodEnd() time.Time {
	if len(inv.Lines.Data) == 0 || inv.Lines.Data[0].Period.End == 0 {
		return time.Time{}
	}
	return time.Unix(inv.Lines.Data[0].Period.End, 0).UTC()
}

func decodeEvent(event stripe.Event) (*gateway.Event, error) {
	out := &gateway.Event{
		ID:         event.ID,
		Kind:       gateway.EventUnrecognized,
		OccurredAt: time.Unix(event.Created, 0).UTC(),
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decoding payment intent payload: %w", err)
		}
		out.PaymentIntentID = pi.ID
		if event.Type == "payment_intent.succeeded" {
			out.Kind = gateway.EventPaymentSucceeded
		} else {
			out.Kind = gateway.EventPaymentFailed
		}

	case "charge.refunded":
		var charge struct {
			PaymentIntent string `json:"payment_intent"`
		}
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("decoding charge payload: %w", err)
		}
		out.Kind = gateway.EventChargeRefunded
		out.PaymentIntentID = charge.PaymentIntent

	case "invoice.payment_succeeded", "invoice.payment_failed":
		var inv invoicePayload
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decoding invoice payload: %w", err)
		}
		out.SubscriptionID = inv.subscriptionID()
		if event.Type == "invoice.payment_succeeded" {
			out.Kind = gateway.EventBillingSucceeded
			out.PaymentIntentID = inv.paymentRef()
			out.AmountMinorUnits = inv.AmountPaid
			out.Currency = strings.ToUpper(inv.Currency)
			out.PeriodEnd = inv.periodEnd()
		} else {
			out.Kind = gateway.EventBillingFailed
		}

	case "customer.subscription.deleted":
		var sub struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decoding subscription payload: %w", err)
		}
		out.Kind = gateway.EventSubscriptionDeleted
		out.SubscriptionID = sub.ID
	}

	return out, nil
}

// subscriptionPeriodEnd reads the current period end off the first
// subscription item, where the API reports it. Zero when Stripe omits it;
// callers fall back to a local approximation.
func subscriptionPeriodEnd(sub *stripe.Subscription) time.Time {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return time.Time{}
	}
	end := sub.Items.Data[0].CurrentPeriodEnd
	if end == 0 {
		return time.Time{}
	}
	return time.Unix(end, 0).UTC()
}
