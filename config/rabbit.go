package config

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Rabbit holds the connection and channel used to publish ask events.
type Rabbit struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Queue   string
}

// Close closes the channel and then the connection.
func (r *Rabbit) Close() error {
	if r == nil {
		return nil
	}
	if err := r.Channel.Close(); err != nil && err != amqp.ErrClosed {
		return err
	}
	if err := r.Conn.Close(); err != nil && err != amqp.ErrClosed {
		return err
	}
	return nil
}

// NewRabbit dials RabbitMQ and declares the event queue. Returns nil when no URL
// is configured.
func NewRabbit(cfg *Config, logger *zap.Logger) (*Rabbit, error) {
	url := cfg.RabbitMQ.Url
	if url == "" {
		logger.Info("rabbitmq url empty, skipping rabbit init")
		return nil, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	qname := cfg.RabbitMQ.Queue
	if qname == "" {
		qname = "ask.events"
	}
	_, err = ch.QueueDeclare(qname, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare RabbitMQ queue: %w", err)
	}

	logger.Info("rabbitmq initialized", zap.String("queue", qname))
	return &Rabbit{Conn: conn, Channel: ch, Queue: qname}, nil
}
