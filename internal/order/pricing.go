package order

import (
	"context"

	"github.com/shopspring/decimal"
)

var (
	TaxRate         = decimal.RequireFromString("0.08")
	PlatformFeeRate = decimal.RequireFromString("0.05")
)

// DiscountPolicy resolves a promo code into an amount off the subtotal.
// Unknown codes should yield zero rather than an error.
type DiscountPolicy interface {
	Discount(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// NoDiscount is the default policy.
type NoDiscount struct{}

func (NoDiscount) Discount(context.Context, string, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type Totals struct {
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PlatformFee    decimal.Decimal
}

func lineTotal(l CartLine) decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

func subtotalOf(lines []CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(lineTotal(l))
	}
	return sum
}

// ComputeTotals prices a cart. Every amount is rounded to cents, shipping is
// always zero, a negative discount counts as none and the total never drops
// below zero.
func ComputeTotals(lines []CartLine, discount decimal.Decimal) Totals {
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	t := Totals{
		Subtotal:       subtotalOf(lines),
		ShippingCost:   decimal.Zero,
		DiscountAmount: discount.Round(2),
	}
	t.TaxAmount = t.Subtotal.Mul(TaxRate).Round(2)

	t.TotalAmount = t.Subtotal.Add(t.ShippingCost).Add(t.TaxAmount).Sub(t.DiscountAmount)
	if t.TotalAmount.IsNegative() {
		t.TotalAmount = decimal.Zero
	}
	t.PlatformFee = t.TotalAmount.Mul(PlatformFeeRate).Round(2)
	return t
}
