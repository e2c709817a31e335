// Package session owns the cart of one shopper session. The Service is
// an explicitly injected object with a session lifecycle (created at
// session start, destroyed at session end); nothing in this repository
// reaches for ambient cart state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lunashop/cart-go/internal/cache"
	"github.com/lunashop/cart-go/internal/cart"
	"github.com/lunashop/cart-go/internal/guest"
	cartsync "github.com/lunashop/cart-go/internal/sync"
)

// ErrLoginRequired is returned for operations the cart API only offers
// to identified shoppers.
var ErrLoginRequired = errors.New("login required")

// RemoteCart is the slice of the cart API the session needs. Every
// mutating call answers with the full authoritative cart.
type RemoteCart interface {
	Fetch(ctx context.Context, userID string) (*cart.Cart, error)
	AddItem(ctx context.Context, userID string, item cart.LineItem) (*cart.Cart, error)
	ChangeQuantity(ctx context.Context, userID, itemID string, quantity int, couponID string) (*cart.Cart, error)
	Increase(ctx context.Context, userID, itemID, couponID string) (*cart.Cart, error)
	Decrease(ctx context.Context, userID, itemID, couponID string) (*cart.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) error
	ApplyCoupon(ctx context.Context, userID, code string) (*cart.Cart, error)
	RemoveCoupon(ctx context.Context, userID string) (*cart.Cart, error)
}

// Reconciler runs the one-time guest cart merge at login.
type Reconciler interface {
	Reconcile(ctx context.Context, sessionID, userID string) (cartsync.Result, error)
}

// View is what the storefront renders: items, active discount and the
// computed totals. Total stays unrounded; DisplayTotal is rounded to 2
// decimal places for presentation.
type View struct {
	Items          []cart.LineItem `json:"items"`
	CouponID       string          `json:"couponId,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	DisplayTotal   string          `json:"displayTotal"`
}

// LoginResult reports the outcome of the login transition. SyncMessage
// is set when the guest cart push failed; the snapshot was kept for a
// later retry and the view still reflects server truth.
type LoginResult struct {
	View        View   `json:"cart"`
	Synced      bool   `json:"synced"`
	SyncMessage string `json:"syncMessage,omitempty"`
}

// Service is the cart of one shopper session. While unauthenticated it
// mutates the guest store locally; after login every operation goes to
// the cart API and the response replaces the cached state.
type Service struct {
	sessionID  string
	remote     RemoteCart
	reconciler Reconciler
	cache      cache.CartCache
	logger     *slog.Logger

	mu     sync.Mutex
	userID string
	guest  *guest.Store
	state  State
}

func NewService(sessionID string, g *guest.Store, remote RemoteCart, reconciler Reconciler, cartCache cache.CartCache, logger *slog.Logger) *Service {
	return &Service{
		sessionID:  sessionID,
		remote:     remote,
		reconciler: reconciler,
		cache:      cartCache,
		logger:     logger,
		guest:      g,
	}
}

func (s *Service) currentUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Service) authenticated() bool { return s.currentUser() != "" }

func viewOf(c *cart.Cart) View {
	items := c.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return View{
		Items:          items,
		CouponID:       c.CouponID,
		DiscountAmount: c.DiscountAmount,
		Total:          c.Total(),
		DisplayTotal:   cart.DisplayTotal(c.Items, c.DiscountAmount),
	}
}

func (s *Service) guestView() View {
	return viewOf(&cart.Cart{Items: s.guest.Items()})
}

// applyRemote runs one remote mutation under a fresh sequence number
// and applies the response unless it arrived late. The returned view
// is always the newest applied state.
func (s *Service) applyRemote(ctx context.Context, call func(ctx context.Context, userID string) (*cart.Cart, error)) (View, error) {
	userID := s.currentUser()
	seq := s.state.Begin()

	c, err := call(ctx, userID)
	if err != nil {
		return View{}, err
	}

	if !s.state.Apply(seq, c) {
		s.logger.InfoContext(ctx, "discarded stale cart response", "sessionId", s.sessionID, "seq", seq)
	} else {
		s.cacheLastKnown(ctx)
	}

	current, _ := s.state.Cart()
	return viewOf(current), nil
}

func (s *Service) cacheLastKnown(ctx context.Context) {
	c, ok := s.state.Cart()
	if !ok || s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.sessionID, c); err != nil {
		s.logger.WarnContext(ctx, "cache last-known cart", "sessionId", s.sessionID, "error", err)
	}
}

// View returns the current cart. For an authenticated shopper with no
// state applied yet it fetches from the server, falling back to the
// last-known cached response when the cart API is unreachable.
func (s *Service) View(ctx context.Context) (View, error) {
	if !s.authenticated() {
		return s.guestView(), nil
	}

	if c, ok := s.state.Cart(); ok {
		return viewOf(c), nil
	}

	view, err := s.applyRemote(ctx, func(ctx context.Context, userID string) (*cart.Cart, error) {
		return s.remote.Fetch(ctx, userID)
	})
	if err == nil {
		return view, nil
	}

	if s.cache != nil {
		if cached, ok, cacheErr := s.cache.Get(ctx, s.sessionID); cacheErr == nil && ok {
			s.logger.WarnContext(ctx, "serving last-known cart, fetch failed", "sessionId", s.sessionID, "error", err)
			return viewOf(cached), nil
		}
	}
	return View{}, err
}

// AddItem adds one unit of the product selection. The Quantity field
// of the argument is ignored.
func (s *Service) AddItem(ctx context.Context, item cart.LineItem) (View, error) {
	if !s.authenticated() {
		s.guest.AddItem(ctx, item)
		return s.guestView(), nil
	}

	return s.applyRemote(ctx, func(ctx context.Context, userID string) (*cart.Cart, error) {
		return s.remote.AddItem(ctx, userID, item)
	})
}

func (s *Service) ChangeQuantity(ctx context.Context, itemID string, quantity int) (View, error) {
	if !s.authenticated() {
		s.guest.ChangeQuantity(ctx, itemID, quantity)
		return s.guestView(), nil
	}

	if quantity < 1 {
		quantity = 1
	}
	coupon := s.couponID()
	return s.applyRemote(ctx, func(ctx context.Context, userID string) (*cart.Cart, error) {
		return s.remote.ChangeQuantity(ctx, userID, itemID, quantity, coupon)
	})
}

func (s *Service) Increase(ctx context.Context, itemID string) (View, error) {
	if !s.authenticated() {
		item, ok := s.guestItem(itemID)
		if !ok {
			return s.guestView(), nil
		}
		s.guest.ChangeQuantity(ctx, itemID, item.Quantity+1)
		return s.guestView(), nil
	}

	coupon := s.couponID()
	return s.applyRemote(ctx, func(ctx context.Context, userID string) (*cart.Cart, error) {
		return s.remote.Increase(ctx, userID, itemID, coupon)
	})
}

// Decrease lowers the quantity by one, flooring at 1. Removal stays an
// explicit separate operation.
func (s *Service) Decrease(ctx context.Context, itemID string) (View, error) {
	if !s.authenticated() {
		item, ok := s.guestItem(itemID)
		if !ok {
			return s.guestView(), nil
		}
		s.guest.ChangeQuantity(ctx, itemID, item.Quantity-1)
		return s.guestView(), nil
	}

	coupon := s.couponID()
	return s.applyRemote(ctx, func(ctx context.Context, userID string) (*cart.Cart, error) {
		return s.remote.Decrease(ctx, userID, itemID, coupon)
	})
}

func (s *Service) RemoveItem(ctx context.Context, itemID string) (View, error) {
	if !s.authenticated() {
		s.guest.RemoveItem(ctx, itemID)
		return s.guestView(), nil
	}

	return s.applyRemote(ctx, func(ctx context.Context, userID string) (*cart.Cart, error) {
		return s.remote.RemoveItem(ctx, userID, itemID)
	})
}

func (s *Service) Clear(ctx context.Context) (View, error) {
	if !s.authenticated() {
		s.guest.Clear(ctx)
		return s.guestView(), nil
	}

	userID := s.currentUser()
	seq := s.state.Begin()
	if err := s.remote.Clear(ctx, userID); err != nil {
		return View{}, err
	}

	empty := &cart.Cart{Items: []cart.LineItem{}}
	if s.state.Apply(seq, empty) {
		s.cacheLastKnown(ctx)
	}
	current, _ := s.state.Cart()
	return viewOf(current), nil
}

// ApplyCoupon submits a coupon code. Eligibility is decided entirely
// server-side; this service only stores the resulting discount amount.
func (s *Service) ApplyCoupon(ctx context.Context, code string) (View, error) {
	if !s.authenticated() {
		return View{}, fmt.Errorf("apply coupon: %w", ErrLoginRequired)
	}

	return s.applyRemote(ctx, func(ctx context.Context, userID string) (*cart.Cart, error) {
		return s.remote.ApplyCoupon(ctx, userID, code)
	})
}

func (s *Service) RemoveCoupon(ctx context.Context) (View, error) {
	if !s.authenticated() {
		return View{}, fmt.Errorf("remove coupon: %w", ErrLoginRequired)
	}

	return s.applyRemote(ctx, func(ctx context.Context, userID string) (*cart.Cart, error) {
		return s.remote.RemoveCoupon(ctx, userID)
	})
}

// Login runs the false→true authentication transition: reconcile the
// guest snapshot into the server cart, then adopt server truth. When
// the shopper is already logged in as the same user the guest merge is
// skipped and the cart is simply re-fetched.
func (s *Service) Login(ctx context.Context, userID string) (LoginResult, error) {
	if userID == "" {
		return LoginResult{}, errors.New("missing userId")
	}

	s.mu.Lock()
	already := s.userID == userID
	s.userID = userID
	s.mu.Unlock()

	if already {
		view, err := s.applyRemote(ctx, func(ctx context.Context, uid string) (*cart.Cart, error) {
			return s.remote.Fetch(ctx, uid)
		})
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{View: view}, nil
	}

	res, err := s.reconciler.Reconcile(ctx, s.sessionID, userID)
	if err != nil {
		return LoginResult{}, err
	}

	seq := s.state.Begin()
	if s.state.Apply(seq, res.Cart) {
		s.cacheLastKnown(ctx)
	}

	out := LoginResult{View: viewOf(res.Cart), Synced: res.Synced}
	if res.SyncErr != nil {
		out.SyncMessage = "your saved cart could not be merged yet; it will be retried"
	}
	return out, nil
}

func (s *Service) couponID() string {
	c, ok := s.state.Cart()
	if !ok {
		return ""
	}
	return c.CouponID
}

func (s *Service) guestItem(itemID string) (cart.LineItem, bool) {
	for _, it := range s.guest.Items() {
		if it.ID == itemID {
			return it, true
		}
	}
	return cart.LineItem{}, false
}
