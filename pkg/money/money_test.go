package money_test

import (
	"testing"

	"github.com/impactlink/impactlink/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloat(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency money.Code
		want     int64
		wantErr  error
	}{
		{"whole dollars", 100, money.USD, 10000, nil},
		{"cents preserved", 25.50, money.USD, 2550, nil},
		{"rounds half away from zero", 0.005, money.USD, 1, nil},
		{"negative rounds half away from zero", -0.005, money.USD, -1, nil},
		{"float imprecision", 19.99, money.USD, 1999, nil},
		{"zero-decimal currency", 1500, money.JPY, 1500, nil},
		{"empty code defaults to USD", 1, "", 100, nil},
		{"invalid code", 1, "usd", 0, money.ErrInvalidCurrency},
		{"too long code", 1, "USDT", 0, money.ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := money.FromFloat(tt.amount, tt.currency)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestAdd(t *testing.T) {
	a, err := money.New(100, money.USD)
	require.NoError(t, err)
	b, err := money.New(250, money.USD)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(350), sum.Amount())

	jpy, err := money.New(100, money.JPY)
	require.NoError(t, err)
	_, err = a.Add(jpy)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestNegate(t *testing.T) {
	m, err := money.New(9180, money.USD)
	require.NoError(t, err)
	assert.Equal(t, int64(-9180), m.Negate().Amount())
	assert.Equal(t, money.USD, m.Negate().Currency())
}

func TestString(t *testing.T) {
	m, err := money.New(9180, money.USD)
	require.NoError(t, err)
	assert.Equal(t, "91.80 USD", m.String())

	y, err := money.New(1500, money.JPY)
	require.NoError(t, err)
	assert.Equal(t, "1500 JPY", y.String())
}
