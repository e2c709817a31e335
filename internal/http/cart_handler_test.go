package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lunashop/cart-go/internal/cart"
	httphandler "github.com/lunashop/cart-go/internal/http"
	"github.com/lunashop/cart-go/internal/remote"
	"github.com/lunashop/cart-go/internal/session"
)

type CartServiceMock struct {
	ViewFunc           func(ctx context.Context) (session.View, error)
	AddItemFunc        func(ctx context.Context, item cart.LineItem) (session.View, error)
	ChangeQuantityFunc func(ctx context.Context, itemID string, quantity int) (session.View, error)
	IncreaseFunc       func(ctx context.Context, itemID string) (session.View, error)
	DecreaseFunc       func(ctx context.Context, itemID string) (session.View, error)
	RemoveItemFunc     func(ctx context.Context, itemID string) (session.View, error)
	ClearFunc          func(ctx context.Context) (session.View, error)
	ApplyCouponFunc    func(ctx context.Context, code string) (session.View, error)
	RemoveCouponFunc   func(ctx context.Context) (session.View, error)
	LoginFunc          func(ctx context.Context, userID string) (session.LoginResult, error)
}

func (m *CartServiceMock) View(ctx context.Context) (session.View, error) {
	return m.ViewFunc(ctx)
}

func (m *CartServiceMock) AddItem(ctx context.Context, item cart.LineItem) (session.View, error) {
	return m.AddItemFunc(ctx, item)
}

func (m *CartServiceMock) ChangeQuantity(ctx context.Context, itemID string, quantity int) (session.View, error) {
	return m.ChangeQuantityFunc(ctx, itemID, quantity)
}

func (m *CartServiceMock) Increase(ctx context.Context, itemID string) (session.View, error) {
	return m.IncreaseFunc(ctx, itemID)
}

func (m *CartServiceMock) Decrease(ctx context.Context, itemID string) (session.View, error) {
	return m.DecreaseFunc(ctx, itemID)
}

func (m *CartServiceMock) RemoveItem(ctx context.Context, itemID string) (session.View, error) {
	return m.RemoveItemFunc(ctx, itemID)
}

func (m *CartServiceMock) Clear(ctx context.Context) (session.View, error) {
	return m.ClearFunc(ctx)
}

func (m *CartServiceMock) ApplyCoupon(ctx context.Context, code string) (session.View, error) {
	return m.ApplyCouponFunc(ctx, code)
}

func (m *CartServiceMock) RemoveCoupon(ctx context.Context) (session.View, error) {
	return m.RemoveCouponFunc(ctx)
}

func (m *CartServiceMock) Login(ctx context.Context, userID string) (session.LoginResult, error) {
	return m.LoginFunc(ctx, userID)
}

type SessionResolverMock struct {
	svc   httphandler.CartService
	err   error
	ended []string
}

func (m *SessionResolverMock) Session(ctx context.Context, sessionID string) (httphandler.CartService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.svc, nil
}

func (m *SessionResolverMock) End(ctx context.Context, sessionID string) {
	m.ended = append(m.ended, sessionID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func emptyView() session.View {
	return session.View{
		Items:          []cart.LineItem{},
		DiscountAmount: decimal.Zero,
		Total:          decimal.Zero,
		DisplayTotal:   "0.00",
	}
}

func TestGetCart(t *testing.T) {
	t.Run("missing session id", func(t *testing.T) {
		handler := httphandler.NewCartHandler(&SessionResolverMock{})
		r := httptest.NewRequest(http.MethodGet, "/api/session//cart", nil)
		w := httptest.NewRecorder()

		handler.GetCart(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("resolver error", func(t *testing.T) {
		handler := httphandler.NewCartHandler(&SessionResolverMock{err: errors.New("db down")})
		r := httptest.NewRequest(http.MethodGet, "/api/session/s1/cart", nil)
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.GetCart(w, r)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		view := session.View{
			Items:          []cart.LineItem{{ID: "i1", ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(15)}},
			DiscountAmount: decimal.Zero,
			Total:          decimal.NewFromInt(30),
			DisplayTotal:   "30.00",
		}
		svc := &CartServiceMock{ViewFunc: func(ctx context.Context) (session.View, error) {
			return view, nil
		}}
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: svc})
		r := httptest.NewRequest(http.MethodGet, "/api/session/s1/cart", nil)
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.GetCart(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var resp session.View
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Items) != 1 || resp.Items[0].ID != "i1" {
			t.Fatalf("unexpected items %+v", resp.Items)
		}
		if resp.DisplayTotal != "30.00" {
			t.Fatalf("unexpected display total %q", resp.DisplayTotal)
		}
	})
}

func TestAddItem(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: &CartServiceMock{}})
		r := httptest.NewRequest(http.MethodPost, "/api/session/s1/cart/items", bytes.NewBufferString("{"))
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.AddItem(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("missing product id", func(t *testing.T) {
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: &CartServiceMock{}})
		r := httptest.NewRequest(http.MethodPost, "/api/session/s1/cart/items", bytes.NewBufferString(`{"price":"15"}`))
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.AddItem(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		var added cart.LineItem
		svc := &CartServiceMock{AddItemFunc: func(ctx context.Context, item cart.LineItem) (session.View, error) {
			added = item
			return emptyView(), nil
		}}
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: svc})
		body := bytes.NewBufferString(`{"productId":"p1","variantId":"v1","size":"M","color":"blue","price":"15","name":"Shirt"}`)
		r := httptest.NewRequest(http.MethodPost, "/api/session/s1/cart/items", body)
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.AddItem(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if added.ProductID != "p1" || added.Size != "M" || !added.UnitPrice.Equal(decimal.NewFromInt(15)) {
			t.Fatalf("unexpected item passed to service %+v", added)
		}
	})

	t.Run("upstream rejection surfaces message and status", func(t *testing.T) {
		svc := &CartServiceMock{AddItemFunc: func(ctx context.Context, item cart.LineItem) (session.View, error) {
			return session.View{}, &remote.Error{Status: http.StatusConflict, Message: "out of stock"}
		}}
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: svc})
		body := bytes.NewBufferString(`{"productId":"p1","price":"15"}`)
		r := httptest.NewRequest(http.MethodPost, "/api/session/s1/cart/items", body)
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.AddItem(w, r)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		var resp map[string]string
		_ = json.NewDecoder(w.Body).Decode(&resp)
		if resp["error"] != "out of stock" {
			t.Fatalf("unexpected error message %q", resp["error"])
		}
	})
}

func TestChangeQuantity(t *testing.T) {
	t.Run("missing item id", func(t *testing.T) {
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: &CartServiceMock{}})
		r := httptest.NewRequest(http.MethodPatch, "/api/session/s1/cart/items/", bytes.NewBufferString(`{"quantity":2}`))
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.ChangeQuantity(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		var gotItem string
		var gotQty int
		svc := &CartServiceMock{ChangeQuantityFunc: func(ctx context.Context, itemID string, quantity int) (session.View, error) {
			gotItem, gotQty = itemID, quantity
			return emptyView(), nil
		}}
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: svc})
		r := httptest.NewRequest(http.MethodPatch, "/api/session/s1/cart/items/i1", bytes.NewBufferString(`{"quantity":4}`))
		r.SetPathValue("sessionId", "s1")
		r.SetPathValue("itemId", "i1")
		w := httptest.NewRecorder()

		handler.ChangeQuantity(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if gotItem != "i1" || gotQty != 4 {
			t.Fatalf("unexpected call %s %d", gotItem, gotQty)
		}
	})
}

func TestApplyCoupon(t *testing.T) {
	t.Run("missing code", func(t *testing.T) {
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: &CartServiceMock{}})
		r := httptest.NewRequest(http.MethodPost, "/api/session/s1/cart/coupon", bytes.NewBufferString(`{}`))
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.ApplyCoupon(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("login required", func(t *testing.T) {
		svc := &CartServiceMock{ApplyCouponFunc: func(ctx context.Context, code string) (session.View, error) {
			return session.View{}, session.ErrLoginRequired
		}}
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: svc})
		r := httptest.NewRequest(http.MethodPost, "/api/session/s1/cart/coupon", bytes.NewBufferString(`{"code":"SAVE10"}`))
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.ApplyCoupon(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("missing user id", func(t *testing.T) {
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: &CartServiceMock{}})
		r := httptest.NewRequest(http.MethodPost, "/api/session/s1/login", bytes.NewBufferString(`{}`))
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.Login(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success with sync message", func(t *testing.T) {
		svc := &CartServiceMock{LoginFunc: func(ctx context.Context, userID string) (session.LoginResult, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id %s", userID)
			}
			return session.LoginResult{
				View:        emptyView(),
				Synced:      false,
				SyncMessage: "your saved cart could not be merged yet; it will be retried",
			}, nil
		}}
		handler := httphandler.NewCartHandler(&SessionResolverMock{svc: svc})
		r := httptest.NewRequest(http.MethodPost, "/api/session/s1/login", bytes.NewBufferString(`{"userId":"u1"}`))
		r.SetPathValue("sessionId", "s1")
		w := httptest.NewRecorder()

		handler.Login(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp session.LoginResult
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.SyncMessage == "" {
			t.Fatalf("expected sync message in response")
		}
	})
}

func TestEndSession(t *testing.T) {
	resolver := &SessionResolverMock{}
	handler := httphandler.NewCartHandler(resolver)
	r := httptest.NewRequest(http.MethodDelete, "/api/session/s1", nil)
	r.SetPathValue("sessionId", "s1")
	w := httptest.NewRecorder()

	handler.EndSession(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(resolver.ended) != 1 || resolver.ended[0] != "s1" {
		t.Fatalf("expected session s1 to be ended, got %v", resolver.ended)
	}
}

func TestRouterWiring(t *testing.T) {
	svc := &CartServiceMock{ViewFunc: func(ctx context.Context) (session.View, error) {
		return emptyView(), nil
	}}
	router := httphandler.NewRouter(&SessionResolverMock{svc: svc}, testLogger())

	r := httptest.NewRequest(http.MethodGet, "/api/session/s1/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Correlation-Id") == "" {
		t.Fatalf("expected correlation id header on response")
	}
}
