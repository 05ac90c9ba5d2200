// Package money provides a value object for monetary amounts.
//
// Invariants:
//   - Amount is always stored in the smallest currency unit (e.g., cents for USD).
//   - Currency code must be valid ISO 4217 (3 uppercase letters).
//   - All arithmetic operations require matching currencies.
//
// Decimal input is converted to minor units exactly once, at ingress.
// Inside the donation core only integer minor units circulate.
package money

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAmount is returned when an amount is not representable
	// in the currency's minor unit (NaN, infinite, or overflowing).
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCurrency is returned when a currency code is not a
	// three-letter uppercase ISO 4217 code.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrCurrencyMismatch is returned when combining amounts of
	// different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Amount is a monetary amount in the smallest currency unit.
type Amount = int64

// Code is a three-letter ISO 4217 currency code.
type Code string

// Common currency codes.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
)

// DefaultCode is the platform default currency.
const DefaultCode = USD

// IsValid reports whether the code is three uppercase ASCII letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

// String returns the code as a string.
func (c Code) String() string { return string(c) }

// Decimals returns the number of minor-unit decimal places for the currency.
func (c Code) Decimals() int {
	if c == JPY {
		return 0
	}
	return 2
}

// Money is a monetary value in a specific currency.
type Money struct {
	amount   Amount
	currency Code
}

// New creates a Money from an amount already expressed in minor units.
func New(amount Amount, currency Code) (Money, error) {
	if currency == "" {
		currency = DefaultCode
	}
	if !currency.IsValid() {
		return Money{}, ErrInvalidCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

// FromFloat converts a decimal major-unit amount (e.g. dollars) to Money.
// The fractional remainder beyond the currency's decimal places is rounded
// half away from zero. This is the single decimal-to-minor-unit conversion
// point for the whole system.
func FromFloat(amount float64, currency Code) (Money, error) {
	if currency == "" {
		currency = DefaultCode
	}
	if !currency.IsValid() {
		return Money{}, ErrInvalidCurrency
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, ErrInvalidAmount
	}
	factor := math.Pow10(currency.Decimals())
	scaled := amount * factor
	if scaled > math.MaxInt64 || scaled < math.MinInt64 {
		return Money{}, ErrInvalidAmount
	}
	return Money{amount: roundHalfAwayFromZero(scaled), currency: currency}, nil
}

func roundHalfAwayFromZero(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}

// Amount returns the value in minor units.
func (m Money) Amount() Amount { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() Code { return m.currency }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// Add returns the sum of two amounts of the same currency.
func (m Money) Add(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount + o.amount, currency: m.currency}, nil
}

// Negate returns the amount with its sign flipped.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Float returns the amount in major units. For display only; never feed
// the result back into arithmetic.
func (m Money) Float() float64 {
	return float64(m.amount) / math.Pow10(m.currency.Decimals())
}

// String formats the amount with its currency, e.g. "91.80 USD".
func (m Money) String() string {
	return fmt.Sprintf("%.*f %s", m.currency.Decimals(), m.Float(), m.currency)
}
