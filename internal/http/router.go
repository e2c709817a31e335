package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lunashop/cart-go/internal/middleware"
)

func NewRouter(sessions SessionResolver, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler)

	h := NewCartHandler(sessions)

	mux.HandleFunc("GET /api/session/{sessionId}/cart", h.GetCart)
	mux.HandleFunc("POST /api/session/{sessionId}/cart/items", h.AddItem)
	mux.HandleFunc("PATCH /api/session/{sessionId}/cart/items/{itemId}", h.ChangeQuantity)
	mux.HandleFunc("POST /api/session/{sessionId}/cart/items/{itemId}/increase", h.Increase)
	mux.HandleFunc("POST /api/session/{sessionId}/cart/items/{itemId}/decrease", h.Decrease)
	mux.HandleFunc("DELETE /api/session/{sessionId}/cart/items/{itemId}", h.RemoveItem)
	mux.HandleFunc("DELETE /api/session/{sessionId}/cart", h.ClearCart)
	mux.HandleFunc("POST /api/session/{sessionId}/cart/coupon", h.ApplyCoupon)
	mux.HandleFunc("DELETE /api/session/{sessionId}/cart/coupon", h.RemoveCoupon)
	mux.HandleFunc("POST /api/session/{sessionId}/login", h.Login)
	mux.HandleFunc("DELETE /api/session/{sessionId}", h.EndSession)

	var handler http.Handler = mux
	handler = middleware.Bearer(handler)
	handler = middleware.CorrelationID(handler)
	handler = middleware.Recover(logger)(handler)
	return handler
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "service": "cart-session-service"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
