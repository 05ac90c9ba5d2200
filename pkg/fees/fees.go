// Package fees computes the platform/processor fee split for a donation.
//
// All arithmetic is integer minor units. Each stored fee field is rounded
// half away from zero at most once; the net amount is derived by
// subtraction so the three parts always sum back to the gross exactly.
package fees

import (
	"fmt"

	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/money"
)

// Policy describes how fees are derived from a gross amount. Rates are in
// basis points so the policy itself is integer-exact.
type Policy struct {
	// PlatformRateBps is the platform's cut, in basis points of gross.
	PlatformRateBps int64
	// ProcessorRateBps is the processor's proportional cut, in basis
	// points of gross.
	ProcessorRateBps int64
	// ProcessorFixedFee is the processor's fixed per-transaction charge,
	// in minor units.
	ProcessorFixedFee int64
	// MinimumAmount is the smallest accepted gross amount, in minor units.
	MinimumAmount int64
}

// DefaultPolicy mirrors the platform's standard pricing: 5% platform fee,
// 2.9% + $0.30 processor fee, $1.00 minimum donation.
func DefaultPolicy() Policy {
	return Policy{
		PlatformRateBps:   500,
		ProcessorRateBps:  290,
		ProcessorFixedFee: 30,
		MinimumAmount:     100,
	}
}

// Split is the result of applying a Policy to a gross amount.
// Invariant: PlatformFee + ProcessorFee + NetAmount == GrossAmount.
type Split struct {
	GrossAmount  money.Amount
	PlatformFee  money.Amount
	ProcessorFee money.Amount
	NetAmount    money.Amount
}

// Compute derives the fee split for a gross amount in minor units.
// Rejects non-positive amounts and amounts below the policy minimum.
func Compute(gross money.Amount, p Policy) (Split, error) {
	if gross <= 0 {
		return Split{}, fmt.Errorf("%w: amount must be positive, got %d", domain.ErrInvalidAmount, gross)
	}
	if gross < p.MinimumAmount {
		return Split{}, fmt.Errorf("%w: amount %d below minimum %d", domain.ErrInvalidAmount, gross, p.MinimumAmount)
	}

	platform := roundBps(gross, p.PlatformRateBps)
	processor := roundBps(gross, p.ProcessorRateBps) + p.ProcessorFixedFee
	net := gross - platform - processor
	if net <= 0 {
		return Split{}, fmt.Errorf("%w: amount %d leaves no net after fees", domain.ErrInvalidAmount, gross)
	}

	return Split{
		GrossAmount:  gross,
		PlatformFee:  platform,
		ProcessorFee: processor,
		NetAmount:    net,
	}, nil
}

// roundBps computes amount*bps/10000 rounded half away from zero, without
// intermediate truncation. Amounts here are always positive.
func roundBps(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}
