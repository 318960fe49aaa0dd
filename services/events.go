package services

import (
	"context"
	"encoding/json"

	"askbrooks/config"
	"askbrooks/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPublisher receives an AskEvent after every question.
type EventPublisher interface {
	Publish(ctx context.Context, event models.AskEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.AskEvent) error { return nil }

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitPublisher publishes ask events as persistent JSON messages to a queue
// through the default exchange.
type RabbitPublisher struct {
	ch    amqpChannel
	queue string
}

// NewEventPublisher returns a RabbitMQ publisher, or a no-op one when RabbitMQ
// is not configured.
func NewEventPublisher(r *config.Rabbit) EventPublisher {
	if r == nil {
		return nopPublisher{}
	}
	return &RabbitPublisher{ch: r.Channel, queue: r.Queue}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event models.AskEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
}
