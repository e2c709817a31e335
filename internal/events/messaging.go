package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange       = "storefront.events"
	CartSyncedRoutingKey = "cart.synced.v1"
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	)
}
