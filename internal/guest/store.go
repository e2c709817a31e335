// Package guest holds the cart of an unauthenticated shopper: an
// in-memory line-item collection that is persisted best-effort to a
// snapshot repository after every mutation, so a new session with the
// same id reconstructs the same cart.
package guest

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lunashop/cart-go/internal/cart"
)

// ItemID derives the deterministic composite key that identifies a
// guest line item before the server has assigned one.
func ItemID(productID, variantID, size, color string) string {
	return strings.Join([]string{productID, variantID, size, color}, "|")
}

// Record is the snapshot projection of one guest line item, one row
// per item in durable storage.
type Record struct {
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	GuestItemID string          `json:"guestItemId"`
	MainImage   string          `json:"mainImage"`
	Name        string          `json:"name"`
}

// SnapshotRepository persists guest cart snapshots keyed by session id.
type SnapshotRepository interface {
	Save(ctx context.Context, sessionID string, items []Record) error
	Load(ctx context.Context, sessionID string) ([]Record, error)
	Delete(ctx context.Context, sessionID string) error
}

// Store is the guest cart for one session. The in-memory items are the
// source of truth; snapshot writes are best-effort and a failed write
// never blocks a mutation.
type Store struct {
	sessionID string
	snapshots SnapshotRepository
	logger    *slog.Logger

	mu    sync.Mutex
	items []cart.LineItem
}

func NewStore(sessionID string, snapshots SnapshotRepository, logger *slog.Logger) *Store {
	return &Store{sessionID: sessionID, snapshots: snapshots, logger: logger}
}

// Restore builds a store from the persisted snapshot for sessionID. A
// load failure yields an empty store; the error is logged only.
func Restore(ctx context.Context, sessionID string, snapshots SnapshotRepository, logger *slog.Logger) *Store {
	s := NewStore(sessionID, snapshots, logger)

	records, err := snapshots.Load(ctx, sessionID)
	if err != nil {
		logger.WarnContext(ctx, "load guest cart snapshot", "sessionId", sessionID, "error", err)
		return s
	}
	for _, r := range records {
		s.items = append(s.items, cart.LineItem{
			ID:        r.GuestItemID,
			ProductID: r.ProductID,
			VariantID: r.VariantID,
			Size:      r.Size,
			Color:     r.Color,
			Quantity:  r.Quantity,
			UnitPrice: r.Price,
			MainImage: r.MainImage,
			Name:      r.Name,
		})
	}
	return s
}

// AddItem adds one unit of the given product selection. When an item
// with the same composite key already exists its quantity is
// incremented by one; otherwise a new line item with quantity 1 is
// appended. The Quantity field of the argument is ignored.
func (s *Store) AddItem(ctx context.Context, item cart.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ItemID(item.ProductID, item.VariantID, item.Size, item.Color)
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity++
			s.persist(ctx)
			return
		}
	}

	item.ID = id
	item.Quantity = 1
	s.items = append(s.items, item)
	s.persist(ctx)
}

// ChangeQuantity replaces the quantity of the matching item, clamped
// to at least 1. Unknown ids are a no-op. Removal never happens here;
// it is an explicit separate operation.
func (s *Store) ChangeQuantity(ctx context.Context, guestItemID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == guestItemID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// RemoveItem drops the matching item from the cart.
func (s *Store) RemoveItem(ctx context.Context, guestItemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != guestItemID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []cart.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]cart.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// persist writes the snapshot projection. Callers hold s.mu. Storage
// errors are logged and otherwise ignored: in-memory state stays
// authoritative until the next merge.
func (s *Store) persist(ctx context.Context) {
	records := make([]Record, 0, len(s.items))
	for _, it := range s.items {
		records = append(records, Record{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			Size:        it.Size,
			Color:       it.Color,
			Price:       it.UnitPrice,
			Quantity:    it.Quantity,
			GuestItemID: it.ID,
			MainImage:   it.MainImage,
			Name:        it.Name,
		})
	}

	if err := s.snapshots.Save(ctx, s.sessionID, records); err != nil {
		s.logger.WarnContext(ctx, "save guest cart snapshot", "sessionId", s.sessionID, "error", err)
	}
}
