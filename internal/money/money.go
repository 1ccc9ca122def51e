// Package money holds the pure cart/discount arithmetic shared by the
// register engine and the order endpoints. All currency math runs on
// shopspring/decimal — binary floats drift under repeated addition.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CartLine is one pre-order staging row.
type CartLine struct {
	ProductRef   string          `json:"product_ref"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	LineDiscount decimal.Decimal `json:"line_discount"`
}

// Cart is the staging area before an order exists. Discount is a single
// scalar interpreted by ApplyDiscount's threshold rule.
type Cart struct {
	Lines    []CartLine      `json:"lines"`
	Discount decimal.Decimal `json:"discount"`
}

// LineTotal returns unitPrice * quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// CartTotal sums LineTotal over all lines, minus per-line discounts.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.UnitPrice, l.Quantity).Sub(l.LineDiscount))
	}
	return total
}

// ApplyDiscount resolves the cart-stage discount scalar:
//
//	discount <= 0          → total unchanged
//	0 < discount <= 100    → percentage of total
//	discount > 100         → absolute currency amount
//
// The absolute branch does NOT clamp at zero: a discount larger than the
// total produces a negative result, and a discount of exactly 100 is a
// 100% discount, not 100 currency units. Both are documented behavior of
// the financial contract — changing the threshold or clamping changes
// observable output downstream.
func ApplyDiscount(total, discount decimal.Decimal) decimal.Decimal {
	switch {
	case discount.LessThanOrEqual(decimal.Zero):
		return total
	case discount.LessThanOrEqual(hundred):
		return total.Sub(total.Mul(discount).Div(hundred))
	default:
		return total.Sub(discount)
	}
}

// Total resolves a full cart: line totals minus line discounts, then the
// cart-level discount rule.
func (c Cart) Total() decimal.Decimal {
	return ApplyDiscount(CartTotal(c.Lines), c.Discount)
}
