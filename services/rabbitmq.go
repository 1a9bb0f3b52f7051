package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// RabbitMQ publishes events to a topic exchange, routed by event kind.
// One channel is shared by all publishes and reopened if the broker closes it.
type RabbitMQ struct {
	open     func() (amqpChannel, error)
	exchange string

	mu sync.Mutex
	ch amqpChannel
}

// NewRabbitMQ opens a channel on conn and declares the exchange.
func NewRabbitMQ(conn *amqp.Connection, exchange string) (*RabbitMQ, error) {
	return newRabbitMQ(func() (amqpChannel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}, exchange)
}

func newRabbitMQ(open func() (amqpChannel, error), exchange string) (*RabbitMQ, error) {
	r := &RabbitMQ{open: open, exchange: exchange}
	if _, err := r.channel(); err != nil {
		return nil, err
	}
	return r, nil
}

// channel returns the live channel, opening and declaring a new one when
// needed. Callers hold r.mu or own r exclusively.
func (r *RabbitMQ) channel() (amqpChannel, error) {
	if r.ch != nil && !r.ch.IsClosed() {
		return r.ch, nil
	}
	ch, err := r.open()
	if err != nil {
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		r.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", r.exchange, err)
	}
	r.ch = ch
	return ch, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ch, err := r.channel()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(
		ctx,
		r.exchange, // exchange
		e.Kind,     // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    e.At,
			Body:         body,
		},
	)
}

// Close releases the shared channel; the connection is closed by its owner.
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		return nil
	}
	err := r.ch.Close()
	r.ch = nil
	return err
}
