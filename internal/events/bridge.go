package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

// Deduper reports whether an event id is seen for the first time.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

type RedisDeduper struct {
	Redis   *redis.Client
	Service string
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Claim(ctx, d.Redis, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID), redisx.TTLDedup)
}

// Bridge feeds events published by other instances into the local bus.
type Bridge struct {
	Bus      *Bus
	Dedup    Deduper
	Instance string // producer name of this instance; its own events are skipped
	Log      *slog.Logger
}

// HandleOrdersChanged is installed as the Kafka consumer handler.
func (b *Bridge) HandleOrdersChanged(ctx context.Context, m kafkago.Message) error {
	if t := kafkax.Header(m.Headers, "x-event-type"); t != "" && t != orders.EventOrdersChanged {
		return nil
	}
	return b.HandleEnvelope(ctx, m.Value)
}

// HandleEnvelope relays one JSON envelope. Malformed bodies are logged and
// acknowledged since they never become valid.
func (b *Bridge) HandleEnvelope(ctx context.Context, body []byte) error {
	log := b.Log
	if log == nil {
		log = slog.Default()
	}

	var env orders.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Warn("drop malformed event", "err", err)
		return nil
	}
	if env.EventType != orders.EventOrdersChanged || env.Producer == b.Instance {
		return nil
	}

	if b.Dedup != nil {
		first, err := b.Dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			log.Warn("dedup unavailable", "event_id", env.EventID, "err", err)
		} else if !first {
			return nil
		}
	}

	e, err := FromEnvelope(env)
	if err != nil {
		log.Warn("drop undecodable event", "event_id", env.EventID, "err", err)
		return nil
	}
	b.Bus.Relay(e)
	return nil
}
