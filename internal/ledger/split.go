package ledger

import (
	"github.com/shopspring/decimal"

	apperrors "gidxpay/internal/errors"
)

// Split is a withdrawal amount divided across the two settlement paths:
// coins settle against the internal ledger, cash pays out externally.
type Split struct {
	CoinsAmount decimal.Decimal `json:"coins_amount"`
	CashAmount  decimal.Decimal `json:"cash_amount"`
}

// SplitWithdrawAmount deterministically splits a requested withdrawal:
// the coins balance is consumed first, the remainder is paid out as cash.
// Fails with ErrInsufficientBalance when the amount exceeds the total.
func SplitWithdrawAmount(amount decimal.Decimal, balance Balance) (Split, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Split{}, apperrors.ErrInvalidAmount
	}

	coins := decimal.Min(amount, balance.CoinsAmount)
	if coins.IsNegative() {
		coins = decimal.Zero
	}
	cash := amount.Sub(coins)

	if cash.GreaterThan(balance.CashAmount) {
		return Split{}, apperrors.ErrInsufficientBalance
	}

	return Split{CoinsAmount: coins, CashAmount: cash}, nil
}

// ValidateSplitPreview compares the split the client previewed against the
// one computed from the current balance. Any difference means the balance
// changed between preview and submission and the request must be rejected.
func ValidateSplitPreview(requested, current Split) error {
	if !requested.CoinsAmount.Equal(current.CoinsAmount) || !requested.CashAmount.Equal(current.CashAmount) {
		return apperrors.ErrStaleBalance
	}
	return nil
}
