// Package pricing holds the price arithmetic shared by the order accumulator
// and the customization dialog. All amounts are in the smallest display unit.
package pricing

import "github.com/shopspring/decimal"

// DefaultTaxRate is the flat tax applied to an order subtotal.
var DefaultTaxRate = decimal.NewFromFloat(0.10)

// Summary aggregates computed order totals.
type Summary struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// UnitPrice returns base plus the sum of the given add-on prices.
func UnitPrice(base decimal.Decimal, addOns ...decimal.Decimal) decimal.Decimal {
	unit := base
	for _, p := range addOns {
		unit = unit.Add(p)
	}
	return unit
}

// LineTotal returns unit * quantity. Quantities below 1 count as 1.
func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(ClampQuantity(quantity))))
}

// ClampQuantity enforces the quantity floor of 1.
func ClampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}

// Totals sums the line totals and applies taxRate.
// No rounding is done, so Total == Subtotal * (1 + taxRate) exactly.
func Totals(lineTotals []decimal.Decimal, taxRate decimal.Decimal) Summary {
	subtotal := decimal.Zero
	for _, lt := range lineTotals {
		subtotal = subtotal.Add(lt)
	}
	tax := subtotal.Mul(taxRate)
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
