// Package contracts defines the enveloped events this service emits.
// Consumers depend on these shapes staying stable; bump the event
// version for breaking changes.
package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lunashop/cart-go/internal/cart"
)

const (
	CartSyncedEventName    = "CartSynced"
	CartSyncedEventVersion = 1
	CartSessionProducer    = "cart-session-service"
)

type EventEnvelope struct {
	EventName     string            `json:"eventName"`
	EventVersion  int               `json:"eventVersion"`
	EventID       string            `json:"eventId"`
	CorrelationID string            `json:"correlationId,omitempty"`
	CausationID   string            `json:"causationId,omitempty"`
	Producer      string            `json:"producer"`
	PartitionKey  string            `json:"partitionKey"`
	Sequence      int64             `json:"sequence"`
	OccurredAt    time.Time         `json:"occurredAt"`
	Payload       CartSyncedPayload `json:"payload"`
}

// CartSyncedPayload describes a guest cart that was reconciled into a
// shopper's server-side cart at login.
type CartSyncedPayload struct {
	UserID         string           `json:"userId"`
	SessionID      string           `json:"sessionId"`
	Items          []CartSyncedItem `json:"items"`
	DiscountAmount decimal.Decimal  `json:"discountAmount"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	SyncedAt       time.Time        `json:"syncedAt"`
}

type CartSyncedItem struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type EnvelopeOptions struct {
	PartitionKey  string
	Sequence      int64
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

func BuildCartSyncedEvent(userID, sessionID string, c *cart.Cart, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payload := CartSyncedPayload{
		UserID:         userID,
		SessionID:      sessionID,
		DiscountAmount: c.DiscountAmount,
		TotalAmount:    c.Total(),
		SyncedAt:       occurredAt,
	}
	for _, it := range c.Items {
		payload.Items = append(payload.Items, CartSyncedItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}

	return EventEnvelope{
		EventName:     CartSyncedEventName,
		EventVersion:  CartSyncedEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      CartSessionProducer,
		PartitionKey:  opts.PartitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Payload:       payload,
	}
}
