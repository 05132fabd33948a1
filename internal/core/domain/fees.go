package domain

// Financial constants, all amounts in whole Toman.
const (
	// CommissionRatePercent is the platform commission on every tip,
	// charged on top of the tip amount.
	CommissionRatePercent = 5

	// WithdrawalFeePercent applies to payouts below the free threshold.
	WithdrawalFeePercent = 10

	// FreeWithdrawalThreshold is the payout amount at or above which no
	// withdrawal fee is charged.
	FreeWithdrawalThreshold = 500_000

	// MinTipAmount and MaxTipAmount bound a single tip (inclusive).
	MinTipAmount = 1_000
	MaxTipAmount = 5_000_000

	// MinWithdrawalAmount bounds a single payout request.
	MinWithdrawalAmount = 10_000

	// MaxPendingPayouts caps open withdrawal requests per cafe.
	MaxPendingPayouts = 3

	// MinBankInfoLen is the minimum length of the bank details an owner
	// supplies with a withdrawal, after trimming whitespace.
	MinBankInfoLen = 10
)

// Commission computes the platform commission on a tip amount, rounded
// up so the platform never receives a fractional-unit shortfall.
func Commission(amount int64) int64 {
	return ceilPercent(amount, CommissionRatePercent)
}

// WithdrawalFee computes the fee on a payout: zero at or above the free
// threshold, otherwise a flat percentage rounded up.
func WithdrawalFee(amount int64) int64 {
	if amount >= FreeWithdrawalThreshold {
		return 0
	}
	return ceilPercent(amount, WithdrawalFeePercent)
}

func ceilPercent(amount int64, percent int64) int64 {
	return (amount*percent + 99) / 100
}
