package sync

import (
	"github.com/lunashop/cart-go/internal/guest"
	"github.com/lunashop/cart-go/internal/remote"
)

// Defaults applied when a guest item lacks an optional attribute, so
// the sync endpoint always receives a complete record:
//
//	attribute | default
//	----------+--------
//	variantId | "none"
//	size      | "none"
//	color     | "none"
const (
	defaultVariantID = "none"
	defaultSize      = "none"
	defaultColor     = "none"
)

// toSyncItems maps guest snapshot records to the server's expected
// shape, filling absent optional attributes from the table above.
func toSyncItems(records []guest.Record) []remote.SyncItem {
	out := make([]remote.SyncItem, 0, len(records))
	for _, r := range records {
		it := remote.SyncItem{
			ProductID: r.ProductID,
			VariantID: r.VariantID,
			Size:      r.Size,
			Color:     r.Color,
			Quantity:  r.Quantity,
			Price:     r.Price,
		}
		if it.VariantID == "" {
			it.VariantID = defaultVariantID
		}
		if it.Size == "" {
			it.Size = defaultSize
		}
		if it.Color == "" {
			it.Color = defaultColor
		}
		out = append(out, it)
	}
	return out
}
