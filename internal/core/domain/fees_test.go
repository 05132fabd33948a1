package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommission(t *testing.T) {
	tests := []struct {
		amount int64
		want   int64
	}{
		{1_000, 50},
		{20_000, 1_000},
		{50_000, 2_500},
		{100_000, 5_000},
		{999, 50},     // ceil(49.95)
		{1_001, 51},   // ceil(50.05)
		{1, 1},        // ceil(0.05)
		{5_000_000, 250_000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Commission(tt.amount), "commission(%d)", tt.amount)
	}
}

func TestWithdrawalFee(t *testing.T) {
	// Threshold boundary: 10% below 500,000, free at and above it.
	assert.Equal(t, int64(50_000), WithdrawalFee(499_999))
	assert.Equal(t, int64(0), WithdrawalFee(500_000))
	assert.Equal(t, int64(0), WithdrawalFee(1_000_000))

	assert.Equal(t, int64(1_000), WithdrawalFee(10_000))
	assert.Equal(t, int64(1_001), WithdrawalFee(10_001)) // ceil(1000.1)
}
