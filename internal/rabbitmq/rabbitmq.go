// Package rabbitmq forwards orders-changed events over a fanout exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

type RabbitMQ struct {
	Conn     *amqp.Connection
	Channel  *amqp.Channel
	Exchange string
	Service  string

	mu sync.Mutex
}

func Dial(url, exchange, service string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	r := &RabbitMQ{Conn: conn, Channel: ch, Exchange: exchange, Service: service}
	if err := r.setup(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) setup() error {
	return r.Channel.ExchangeDeclare(
		r.Exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
}

// Forward implements events.Sink.
func (r *RabbitMQ) Forward(ctx context.Context, e events.Event) error {
	body, err := json.Marshal(events.ToEnvelope(e, r.Service))
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		MessageId:    e.ID,
		Type:         orders.EventOrdersChanged,
		Body:         body,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Channel.PublishWithContext(ctx, r.Exchange, "", false, false, msg)
}

// Consume binds a private queue to the exchange and hands every delivery to
// h until ctx is done. Deliveries are acked once h returns nil.
func (r *RabbitMQ) Consume(ctx context.Context, h func(ctx context.Context, body []byte) error, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	q, err := r.Channel.QueueDeclare(
		"",
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := r.Channel.QueueBind(q.Name, "", r.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := r.Channel.Consume(q.Name, r.Service, false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := h(ctx, d.Body); err != nil {
				log.Warn("rabbitmq handler failed", "message_id", d.MessageId, "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		_ = r.Channel.Close()
	}
	if r.Conn != nil {
		_ = r.Conn.Close()
	}
}
