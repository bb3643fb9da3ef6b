package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

const envelopeVersion = 1

// ToEnvelope wraps e for the wire.
func ToEnvelope(e Event, producer string) orders.Envelope {
	return orders.Envelope{
		EventID:       e.ID,
		EventType:     orders.EventOrdersChanged,
		EventVersion:  envelopeVersion,
		OccurredAt:    e.OccurredAt,
		Producer:      producer,
		CorrelationID: strconv.FormatInt(e.OrderID, 10),
		Payload:       kafkax.MustMarshal(orders.OrdersChangedPayload{OrderID: e.OrderID, Subject: e.Subject, Reason: e.Reason}),
	}
}

// FromEnvelope is the inverse of ToEnvelope. The version is left for the
// receiving bus to assign.
func FromEnvelope(env orders.Envelope) (Event, error) {
	if env.EventType != orders.EventOrdersChanged {
		return Event{}, fmt.Errorf("unexpected event type %q", env.EventType)
	}
	p, err := kafkax.UnwrapPayload[orders.OrdersChangedPayload](env.Payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         env.EventID,
		Kind:       KindOrdersChanged,
		OrderID:    p.OrderID,
		Subject:    p.Subject,
		Reason:     p.Reason,
		OccurredAt: env.OccurredAt,
	}, nil
}

// KafkaPublisher is satisfied by *kafkax.Producer.
type KafkaPublisher interface {
	Publish(key, value []byte, headers ...kafka.Header) error
}

// KafkaSink forwards events to the orders-changed topic.
type KafkaSink struct {
	Producer KafkaPublisher
	Service  string
}

func (s *KafkaSink) Forward(_ context.Context, e Event) error {
	b, err := json.Marshal(ToEnvelope(e, s.Service))
	if err != nil {
		return err
	}
	return s.Producer.Publish(orders.PartitionKey(e.OrderID), b,
		kafka.Header{Key: "x-event-type", Value: []byte(orders.EventOrdersChanged)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(envelopeVersion))},
	)
}
