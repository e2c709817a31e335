package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lunashop/cart-go/internal/cart"
	"github.com/lunashop/cart-go/internal/contracts"
	"github.com/lunashop/cart-go/internal/middleware"
)

// RabbitCartEventsPublisher publishes CartSynced events to the shared
// topic exchange, stamped with a per-user sequence.
type RabbitCartEventsPublisher struct {
	ch        *amqp.Channel
	sequences SequenceRepository
}

func NewRabbitCartEventsPublisher(conn *amqp.Connection, sequences SequenceRepository) (*RabbitCartEventsPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitCartEventsPublisher{ch: ch, sequences: sequences}, nil
}

func (p *RabbitCartEventsPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitCartEventsPublisher) PublishCartSynced(ctx context.Context, userID, sessionID string, c *cart.Cart) error {
	seq, err := p.sequences.NextSequence(ctx, userID)
	if err != nil {
		return fmt.Errorf("next sequence for user %s: %w", userID, err)
	}

	ev := contracts.BuildCartSyncedEvent(userID, sessionID, c, contracts.EnvelopeOptions{
		PartitionKey:  userID,
		Sequence:      seq,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal CartSynced: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		CartSyncedRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.EventID,
			Timestamp:    ev.OccurredAt,
			Body:         body,
		},
	)
}
