// Package auth carries the bearer credential issued by the external
// identity service. Token refresh is not handled here.
package auth

import "context"

// TokenSource supplies a bearer credential for outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource always returns the same credential. Useful for
// service-to-service calls and tests.
type StaticTokenSource struct {
	token string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

func (s *StaticTokenSource) Token(ctx context.Context) (string, error) {
	return s.token, nil
}

type ctxKey string

const ctxBearer ctxKey = "bearer_token"

// WithBearer stores the shopper's bearer credential in the context so
// the remote client can attach it downstream.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxBearer, token)
}

func BearerFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxBearer); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
