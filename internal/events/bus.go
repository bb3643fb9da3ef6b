// Package events carries the "orders changed" signal between the services
// that mutate orders and the views that display them.
package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Kind string

const KindOrdersChanged Kind = "orders.changed"

// Event says that something about an order changed. It carries no order
// data; subscribers refetch. Subject is the order owner's user id when known.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	OrderID    int64     `json:"orderId,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Reason     string    `json:"reason"`
	Version    uint64    `json:"version"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Sink forwards locally published events to other instances.
type Sink interface {
	Forward(ctx context.Context, e Event) error
}

type Bus struct {
	mu      sync.Mutex
	subs    map[uint64]chan Event
	nextID  uint64
	version atomic.Uint64

	buf     int
	sinks   []Sink
	log     *slog.Logger
	observe func(origin string)
}

type Option func(*Bus)

// WithBuffer sets the per-subscriber channel size.
func WithBuffer(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.buf = n
		}
	}
}

func WithSink(s Sink) Option {
	return func(b *Bus) { b.sinks = append(b.sinks, s) }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// WithObserver is told the origin ("local" or "remote") of every event.
func WithObserver(fn func(origin string)) Option {
	return func(b *Bus) { b.observe = fn }
}

func NewBus(opts ...Option) *Bus {
	b := &Bus{subs: map[uint64]chan Event{}, buf: 16, log: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Subscribe registers a subscriber. The returned cancel func unsubscribes and
// closes the channel; calling it more than once is fine.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buf)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Version is the number of events seen so far.
func (b *Bus) Version() uint64 { return b.version.Load() }

// OrdersChanged publishes a change of orderID owned by subject.
func (b *Bus) OrdersChanged(ctx context.Context, orderID int64, subject, reason string) Event {
	return b.Publish(ctx, Event{Kind: KindOrdersChanged, OrderID: orderID, Subject: subject, Reason: reason})
}

// VisibleTo reports whether a viewer with the given subject may see e.
// Admins see everything; everyone else only events about their own orders.
func (e Event) VisibleTo(subject string, admin bool) bool {
	if admin {
		return true
	}
	return subject != "" && e.Subject == subject
}

// Publish stamps e with a version (and an id and time when missing), hands it
// to local subscribers and then forwards it to every sink. Sink failures are
// logged only.
func (b *Bus) Publish(ctx context.Context, e Event) Event {
	e = b.deliver(e)
	if b.observe != nil {
		b.observe("local")
	}
	if len(b.sinks) == 0 {
		return e
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	for _, s := range b.sinks {
		if err := s.Forward(fctx, e); err != nil {
			b.log.Warn("forward event failed", "event_id", e.ID, "order_id", e.OrderID, "err", err)
		}
	}
	return e
}

// Relay delivers an event received from another instance to local
// subscribers only.
func (b *Bus) Relay(e Event) Event {
	e = b.deliver(e)
	if b.observe != nil {
		b.observe("remote")
	}
	return e
}

func (b *Bus) deliver(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Kind == "" {
		e.Kind = KindOrdersChanged
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	e.Version = b.version.Add(1)
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// full: drop the oldest so the newest version always lands
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- e:
			default:
			}
		}
	}
	return e
}
