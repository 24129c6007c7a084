// Package money holds the pricing rules shared by checkout and payments.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MinorUnits converts an amount to integer cents, rounding half up.
func MinorUnits(amount decimal.Decimal) int64 {
	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative amounts we charge.
	return amount.Mul(hundred).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ShippingRule waives a flat fee once the subtotal reaches a threshold.
type ShippingRule struct {
	FreeThreshold decimal.Decimal
	Fee           decimal.Decimal
}

func DefaultShipping() ShippingRule {
	return ShippingRule{
		FreeThreshold: decimal.RequireFromString("50.00"),
		Fee:           decimal.RequireFromString("5.95"),
	}
}

// ParseShipping builds a rule from configuration strings.
func ParseShipping(threshold, fee string) (ShippingRule, error) {
	t, err := decimal.NewFromString(threshold)
	if err != nil {
		return ShippingRule{}, fmt.Errorf("shipping threshold %q: %w", threshold, err)
	}
	f, err := decimal.NewFromString(fee)
	if err != nil {
		return ShippingRule{}, fmt.Errorf("shipping fee %q: %w", fee, err)
	}
	if t.IsNegative() || f.IsNegative() {
		return ShippingRule{}, fmt.Errorf("shipping threshold and fee must be non-negative")
	}
	return ShippingRule{FreeThreshold: t, Fee: f}, nil
}

func (r ShippingRule) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(r.FreeThreshold) {
		return decimal.Zero
	}
	return r.Fee
}

// Totals returns shipping fee and grand total for a subtotal.
func (r ShippingRule) Totals(subtotal decimal.Decimal) (shipping, total decimal.Decimal) {
	shipping = r.FeeFor(subtotal)
	return shipping, subtotal.Add(shipping)
}
