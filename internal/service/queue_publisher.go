// Package service provides functions to publish booking events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/iliyamo/bus-ticket-booking/internal/queue"
)

// EventPublisher sends booking events to downstream consumers.
type EventPublisher interface {
    Publish(ctx context.Context, event q.BookingEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, q.BookingEvent) error { return nil }

// RabbitPublisher publishes events to the durable booking.events queue.
// The connection is opened lazily and reopened after the broker drops it.
type RabbitPublisher struct {
    url  string
    log  *zap.Logger
    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewRabbitPublisher returns a publisher for the broker at url.  No
// connection is made until the first Publish.
func NewRabbitPublisher(url string, log *zap.Logger) *RabbitPublisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &RabbitPublisher{url: url, log: log}
}

// Publish marshals the event and publishes it as a persistent message.
// The function never panics; any error is logged and returned.
func (p *RabbitPublisher) Publish(ctx context.Context, event q.BookingEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        p.log.Error("rabbitmq: marshal event failed", zap.Error(err))
        return err
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channelLocked()
    if err != nil {
        p.log.Warn("rabbitmq: channel unavailable", zap.Error(err))
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         event.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                 // default exchange
        q.BookingQueueName, // routing key = queue name
        false,              // mandatory
        false,              // immediate
        pub,
    ); err != nil {
        p.log.Warn("rabbitmq: publish failed", zap.String("type", event.Type), zap.String("booking_id", event.BookingID), zap.Error(err))
        p.resetLocked()
        return err
    }
    return nil
}

// Close releases the broker connection.
func (p *RabbitPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.conn == nil {
        return nil
    }
    err := p.conn.Close()
    p.conn, p.ch = nil, nil
    return err
}

// channelLocked expects p.mu to be held.
func (p *RabbitPublisher) channelLocked() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.resetLocked()

    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, err
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.BookingQueueName, // name
        true,               // durable
        false,              // autoDelete
        false,              // exclusive
        false,              // noWait
        nil,                // args
    ); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *RabbitPublisher) resetLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}
