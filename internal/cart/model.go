package cart

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product variant/size/color entry in a cart together
// with its requested quantity.
//
// ID is the server-assigned item identifier. While the shopper is not
// authenticated no server identifier exists yet, so ID holds the
// deterministic composite guest key instead (see guest.ItemID).
type LineItem struct {
	ID              string          `json:"itemId,omitempty"`
	ProductID       string          `json:"productId"`
	VariantID       string          `json:"variantId,omitempty"`
	Size            string          `json:"size,omitempty"`
	Color           string          `json:"color,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	PerItemDiscount decimal.Decimal `json:"perItemDiscount"`
	MainImage       string          `json:"mainImage,omitempty"`
	Name            string          `json:"name,omitempty"`
}

// Cart is the shopper-facing view of a cart: the ordered line items
// plus the discount produced by the active coupon. Insertion order is
// preserved; pricing does not depend on it.
type Cart struct {
	Items          []LineItem      `json:"items"`
	CouponID       string          `json:"couponId,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// Total computes the discounted total of the cart. See Total.
func (c *Cart) Total() decimal.Decimal {
	return Total(c.Items, c.DiscountAmount)
}
