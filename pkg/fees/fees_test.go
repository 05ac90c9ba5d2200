package fees_test

import (
	"testing"

	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/fees"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	policy := fees.DefaultPolicy()

	tests := []struct {
		name          string
		gross         int64
		wantPlatform  int64
		wantProcessor int64
		wantNet       int64
		wantErr       error
	}{
		{
			// $100.00 -> $5.00 platform, $3.20 processor, $91.80 net
			name:          "hundred dollars",
			gross:         10000,
			wantPlatform:  500,
			wantProcessor: 320,
			wantNet:       9180,
		},
		{
			name:          "minimum donation",
			gross:         100,
			wantPlatform:  5,
			wantProcessor: 33,
			wantNet:       62,
		},
		{
			// 2.9% of 1033 = 29.957 -> rounds to 30, not truncated to 29
			name:          "proportional fee rounds half up",
			gross:         1033,
			wantPlatform:  52,
			wantProcessor: 60,
			wantNet:       921,
		},
		{name: "below minimum", gross: 50, wantErr: domain.ErrInvalidAmount},
		{name: "zero", gross: 0, wantErr: domain.ErrInvalidAmount},
		{name: "negative", gross: -100, wantErr: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := fees.Compute(tt.gross, policy)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPlatform, split.PlatformFee, "platform fee")
			assert.Equal(t, tt.wantProcessor, split.ProcessorFee, "processor fee")
			assert.Equal(t, tt.wantNet, split.NetAmount, "net amount")
		})
	}
}

// The split must partition the gross exactly for every amount: no cent is
// created or destroyed by fee derivation.
func TestComputePartitionsGrossExactly(t *testing.T) {
	policy := fees.DefaultPolicy()
	for gross := policy.MinimumAmount; gross <= 100_000; gross += 7 {
		split, err := fees.Compute(gross, policy)
		require.NoError(t, err)
		require.Equal(t, gross,
			split.PlatformFee+split.ProcessorFee+split.NetAmount,
			"gross %d", gross)
		require.Positive(t, split.NetAmount, "gross %d", gross)
	}
}

func TestComputeCustomPolicy(t *testing.T) {
	policy := fees.Policy{
		PlatformRateBps:   0,
		ProcessorRateBps:  0,
		ProcessorFixedFee: 0,
		MinimumAmount:     1,
	}
	split, err := fees.Compute(250, policy)
	require.NoError(t, err)
	assert.Equal(t, int64(250), split.NetAmount)
	assert.Zero(t, split.PlatformFee)
	assert.Zero(t, split.ProcessorFee)
}
