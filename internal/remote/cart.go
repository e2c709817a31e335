package remote

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lunashop/cart-go/internal/cart"
)

// CartClient exposes the authoritative cart operations for an
// identified shopper. Quantity mutations carry the active coupon code
// so the server can re-validate discount eligibility after the change.
type CartClient struct {
	c *Client
}

func NewCartClient(c *Client) *CartClient { return &CartClient{c: c} }

// SyncItem is the complete record the sync endpoint expects for each
// guest line item. Optional attributes are never omitted; the merge
// coordinator fills absent ones with sentinel values.
type SyncItem struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (cc *CartClient) Fetch(ctx context.Context, userID string) (*cart.Cart, error) {
	var out cart.Cart
	if err := cc.c.do(ctx, http.MethodGet, "/api/cart/"+userID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CartClient) AddItem(ctx context.Context, userID string, item cart.LineItem) (*cart.Cart, error) {
	body := struct {
		ProductID string          `json:"productId"`
		VariantID string          `json:"variantId,omitempty"`
		Size      string          `json:"size,omitempty"`
		Color     string          `json:"color,omitempty"`
		Quantity  int             `json:"quantity"`
		Price     decimal.Decimal `json:"price"`
	}{
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Size:      item.Size,
		Color:     item.Color,
		Quantity:  1,
		Price:     item.UnitPrice,
	}

	var out cart.Cart
	if err := cc.c.do(ctx, http.MethodPost, "/api/cart/"+userID+"/items", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type quantityBody struct {
	Quantity int    `json:"quantity,omitempty"`
	CouponID string `json:"couponId"`
}

func (cc *CartClient) ChangeQuantity(ctx context.Context, userID, itemID string, quantity int, couponID string) (*cart.Cart, error) {
	var out cart.Cart
	body := quantityBody{Quantity: quantity, CouponID: couponID}
	if err := cc.c.do(ctx, http.MethodPatch, "/api/cart/"+userID+"/items/"+itemID, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CartClient) Increase(ctx context.Context, userID, itemID, couponID string) (*cart.Cart, error) {
	var out cart.Cart
	body := quantityBody{CouponID: couponID}
	if err := cc.c.do(ctx, http.MethodPost, "/api/cart/"+userID+"/items/"+itemID+"/increase", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CartClient) Decrease(ctx context.Context, userID, itemID, couponID string) (*cart.Cart, error) {
	var out cart.Cart
	body := quantityBody{CouponID: couponID}
	if err := cc.c.do(ctx, http.MethodPost, "/api/cart/"+userID+"/items/"+itemID+"/decrease", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CartClient) RemoveItem(ctx context.Context, userID, itemID string) (*cart.Cart, error) {
	var out cart.Cart
	if err := cc.c.do(ctx, http.MethodDelete, "/api/cart/"+userID+"/items/"+itemID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CartClient) Clear(ctx context.Context, userID string) error {
	return cc.c.do(ctx, http.MethodDelete, "/api/cart/"+userID, nil, nil)
}

func (cc *CartClient) ApplyCoupon(ctx context.Context, userID, code string) (*cart.Cart, error) {
	body := struct {
		Code string `json:"code"`
	}{Code: code}

	var out cart.Cart
	if err := cc.c.do(ctx, http.MethodPost, "/api/cart/"+userID+"/coupon", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CartClient) RemoveCoupon(ctx context.Context, userID string) (*cart.Cart, error) {
	var out cart.Cart
	if err := cc.c.do(ctx, http.MethodDelete, "/api/cart/"+userID+"/coupon", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SyncItems pushes a whole guest cart in one request. The server
// deduplicates against any pre-existing cart for the user and answers
// with the merged authoritative cart.
func (cc *CartClient) SyncItems(ctx context.Context, userID string, items []SyncItem) (*cart.Cart, error) {
	body := struct {
		Items []SyncItem `json:"items"`
	}{Items: items}

	var out cart.Cart
	if err := cc.c.do(ctx, http.MethodPost, "/api/cart/"+userID+"/sync", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
