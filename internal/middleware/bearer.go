package middleware

import (
	"net/http"
	"strings"

	"github.com/lunashop/cart-go/internal/auth"
)

// Bearer lifts the shopper's Authorization credential into the request
// context so it can be forwarded to the upstream cart API. Requests
// without one pass through untouched (guest traffic).
func Bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(h, "Bearer "); ok && token != "" {
			r = r.WithContext(auth.WithBearer(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
