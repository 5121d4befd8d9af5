// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package events publishes domain events to RabbitMQ.

Publishing is fire-and-forget from the caller's point of view: a failure is
logged and returned, and callers do not fail the user request because of it.

Events:

  - auth.signed_up       a new account awaits email confirmation
  - checkout.completed   an order was placed and the cart cleared
*/
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
)

// Routing keys.
const (
	SignedUp          = "auth.signed_up"
	CheckoutCompleted = "checkout.completed"
)

// Publisher sends an event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// # RabbitMQ

// AMQP publishes persistent JSON messages to a durable topic exchange.
type AMQP struct {
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
}

// DialAMQP connects to url and declares exchange.
func DialAMQP(url, exchange string) (*AMQP, error) {
	connection, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial failed: %w", err)
	}

	channel, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("events: channel open failed: %w", err)
	}

	// Durable so bindings survive broker restarts.
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = connection.Close()
		return nil, fmt.Errorf("events: exchange declare failed: %w", err)
	}

	return &AMQP{connection: connection, channel: channel, exchange: exchange}, nil
}

// Publish sends payload as a persistent JSON message.
func (publisher *AMQP) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal failed: %w", err)
	}

	message := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ctxutil.GetRequestID(ctx),
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing.
	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	if err := publisher.channel.PublishWithContext(ctx, publisher.exchange, routingKey, false, false, message); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "event_publish_failed",
			slog.String("routing_key", routingKey),
			slog.Any("error", err),
		)
		return fmt.Errorf("events: publish failed: %w", err)
	}
	return nil
}

// Close closes the channel and the connection.
func (publisher *AMQP) Close() error {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	_ = publisher.channel.Close()
	return publisher.connection.Close()
}

// # Local

// Event is a published message kept by [Recorder].
type Event struct {
	RoutingKey string
	Payload    any
}

// Recorder implements [Publisher] in memory. It is used when no broker is
// configured and in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records the event and logs it at debug level.
func (recorder *Recorder) Publish(ctx context.Context, routingKey string, payload any) error {
	recorder.mu.Lock()
	recorder.events = append(recorder.events, Event{RoutingKey: routingKey, Payload: payload})
	recorder.mu.Unlock()

	ctxutil.GetLogger(ctx).DebugContext(ctx, "event_recorded", slog.String("routing_key", routingKey))
	return nil
}

// Events returns a copy of the recorded events.
func (recorder *Recorder) Events() []Event {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	out := make([]Event, len(recorder.events))
	copy(out, recorder.events)
	return out
}
