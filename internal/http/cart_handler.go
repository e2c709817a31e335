package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lunashop/cart-go/internal/cart"
	"github.com/lunashop/cart-go/internal/remote"
	"github.com/lunashop/cart-go/internal/session"
)

// CartService is one shopper session's cart.
type CartService interface {
	View(ctx context.Context) (session.View, error)
	AddItem(ctx context.Context, item cart.LineItem) (session.View, error)
	ChangeQuantity(ctx context.Context, itemID string, quantity int) (session.View, error)
	Increase(ctx context.Context, itemID string) (session.View, error)
	Decrease(ctx context.Context, itemID string) (session.View, error)
	RemoveItem(ctx context.Context, itemID string) (session.View, error)
	Clear(ctx context.Context) (session.View, error)
	ApplyCoupon(ctx context.Context, code string) (session.View, error)
	RemoveCoupon(ctx context.Context) (session.View, error)
	Login(ctx context.Context, userID string) (session.LoginResult, error)
}

// SessionResolver hands out the cart service for a session id.
type SessionResolver interface {
	Session(ctx context.Context, sessionID string) (CartService, error)
	End(ctx context.Context, sessionID string)
}

type managerResolver struct {
	m *session.Manager
}

// NewManagerResolver adapts a session.Manager for the handler.
func NewManagerResolver(m *session.Manager) SessionResolver {
	return managerResolver{m: m}
}

func (r managerResolver) Session(ctx context.Context, sessionID string) (CartService, error) {
	return r.m.Session(ctx, sessionID)
}

func (r managerResolver) End(ctx context.Context, sessionID string) {
	r.m.End(ctx, sessionID)
}

type CartHandler struct {
	sessions SessionResolver
}

func NewCartHandler(sessions SessionResolver) *CartHandler {
	return &CartHandler{sessions: sessions}
}

// requestTimeout bounds one storefront interaction; remote calls and
// snapshot writes happen within it.
const requestTimeout = 10 * time.Second

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (CartService, context.Context, context.CancelFunc, bool) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return nil, nil, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)

	svc, err := h.sessions.Session(ctx, sessionID)
	if err != nil {
		cancel()
		writeError(w, http.StatusInternalServerError, "failed to open session")
		return nil, nil, nil, false
	}
	return svc, ctx, cancel, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	svc, ctx, cancel, ok := h.session(w, r)
	if !ok {
		return
	}
	defer cancel()

	view, err := svc.View(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type addItemRequest struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	MainImage string          `json:"mainImage"`
	Name      string          `json:"name"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	svc, ctx, cancel, ok := h.session(w, r)
	if !ok {
		return
	}
	defer cancel()

	var body addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}

	view, err := svc.AddItem(ctx, cart.LineItem{
		ProductID: body.ProductID,
		VariantID: body.VariantID,
		Size:      body.Size,
		Color:     body.Color,
		UnitPrice: body.Price,
		MainImage: body.MainImage,
		Name:      body.Name,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	svc, ctx, cancel, ok := h.session(w, r)
	if !ok {
		return
	}
	defer cancel()

	itemID := r.PathValue("itemId")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing itemId")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	view, err := svc.ChangeQuantity(ctx, itemID, body.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Increase(w http.ResponseWriter, r *http.Request) {
	h.itemOp(w, r, func(svc CartService, ctx context.Context, itemID string) (session.View, error) {
		return svc.Increase(ctx, itemID)
	})
}

func (h *CartHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	h.itemOp(w, r, func(svc CartService, ctx context.Context, itemID string) (session.View, error) {
		return svc.Decrease(ctx, itemID)
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.itemOp(w, r, func(svc CartService, ctx context.Context, itemID string) (session.View, error) {
		return svc.RemoveItem(ctx, itemID)
	})
}

func (h *CartHandler) itemOp(w http.ResponseWriter, r *http.Request, op func(CartService, context.Context, string) (session.View, error)) {
	svc, ctx, cancel, ok := h.session(w, r)
	if !ok {
		return
	}
	defer cancel()

	itemID := r.PathValue("itemId")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing itemId")
		return
	}

	view, err := op(svc, ctx, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	svc, ctx, cancel, ok := h.session(w, r)
	if !ok {
		return
	}
	defer cancel()

	view, err := svc.Clear(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	svc, ctx, cancel, ok := h.session(w, r)
	if !ok {
		return
	}
	defer cancel()

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}

	view, err := svc.ApplyCoupon(ctx, body.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	svc, ctx, cancel, ok := h.session(w, r)
	if !ok {
		return
	}
	defer cancel()

	view, err := svc.RemoveCoupon(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Login(w http.ResponseWriter, r *http.Request) {
	svc, ctx, cancel, ok := h.session(w, r)
	if !ok {
		return
	}
	defer cancel()

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	result, err := svc.Login(ctx, body.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CartHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	h.sessions.End(ctx, sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "session ended"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

// writeServiceError maps a service failure to a status and a message
// the storefront can toast. No failure passes silently.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrLoginRequired) {
		writeError(w, http.StatusUnauthorized, "please log in first")
		return
	}

	var apiErr *remote.Error
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status == 0 || status >= 500 {
			status = http.StatusBadGateway
		}
		writeError(w, status, remote.UserMessage(err))
		return
	}

	writeError(w, http.StatusInternalServerError, remote.GenericUserMessage)
}
