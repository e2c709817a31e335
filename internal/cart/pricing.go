package cart

import "github.com/shopspring/decimal"

// Subtotal computes the sum over items of unitPrice*quantity minus the
// per-item discount. Pure function, no rounding between steps.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Sub(it.PerItemDiscount)
		sum = sum.Add(line)
	}
	return sum
}

// Total computes Subtotal(items) - discountAmount, clamped at zero so a
// coupon can never drive the effective total negative.
func Total(items []LineItem, discountAmount decimal.Decimal) decimal.Decimal {
	total := Subtotal(items).Sub(discountAmount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// DisplayTotal renders the total rounded to 2 decimal places. Rounding
// happens here only, never inside the aggregation.
func DisplayTotal(items []LineItem, discountAmount decimal.Decimal) string {
	return Total(items, discountAmount).StringFixed(2)
}
