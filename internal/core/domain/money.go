package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits a ledger amount may carry (cents).
const MoneyScale = 2

// ParseAmount parses a decimal string into a positive ledger amount.
// Non-numeric, non-positive and sub-cent inputs fail with ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", apperrors.ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidAmount, s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount checks that d is strictly positive and has at most two decimal places.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero, got %s", apperrors.ErrInvalidAmount, d.String())
	}
	if !HasCentPrecision(d) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrInvalidAmount, d.String(), MoneyScale)
	}
	return nil
}

// HasCentPrecision reports whether d can be represented exactly in cents.
func HasCentPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// MinAmount returns the smaller of a and b.
func MinAmount(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// SumAmounts adds up amounts.
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatAmount renders d with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
