// Package cache keeps the last authoritative cart response per session
// so the storefront can still show something meaningful when the cart
// API is briefly unreachable.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lunashop/cart-go/internal/cart"
)

type CartCache interface {
	Set(ctx context.Context, sessionID string, c *cart.Cart) error
	Get(ctx context.Context, sessionID string) (*cart.Cart, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartCache(addr string, ttl time.Duration) CartCache {
	return &redisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (r *redisCache) key(sessionID string) string {
	return fmt.Sprintf("cart-session:last-known:%s", sessionID)
}

func (r *redisCache) Set(ctx context.Context, sessionID string, c *cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return r.client.Set(ctx, r.key(sessionID), payload, r.ttl).Err()
}

func (r *redisCache) Get(ctx context.Context, sessionID string) (*cart.Cart, bool, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var c cart.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached cart: %w", err)
	}
	return &c, true, nil
}

func (r *redisCache) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
