// Package tracking serves the customer's order list, cancellation and the
// single-order tracking page.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

var (
	ErrUnauthenticated = errors.New("login required")
	ErrAdminRedirect   = errors.New("admins use the back office")
	ErrNotCancellable  = errors.New("order can no longer be cancelled")
	ErrInvalidReason   = errors.New("unknown cancellation reason")
)

// CancelReasons are the choices offered before a cancellation.
var CancelReasons = []string{
	"Ordered by mistake",
	"Found a better price elsewhere",
	"Delivery time is too long",
	"Need to change shipping address",
	"Other",
}

type Backend interface {
	ListMyOrders(ctx context.Context) (api.Response[[]orders.Order], error)
	GetOrder(ctx context.Context, id int64) (api.Response[orders.Order], error)
	CancelOrder(ctx context.Context, id int64, reason string) (api.Response[struct{}], error)
}

type Notifier interface {
	OrdersChanged(ctx context.Context, orderID int64, subject, reason string) events.Event
}

type Support struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Hours string `json:"hours"`
}

// Card is one order in the customer's list.
type Card struct {
	ID            int64                `json:"id"`
	OrderedAt     time.Time            `json:"orderedAt"`
	Status        orders.Status        `json:"status"`
	PaymentMethod orders.PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentStatus orders.PaymentStatus `json:"paymentStatus,omitempty"`
	ShipTo        string               `json:"shipTo"`
	Address       orders.Address       `json:"address"`
	Items         []orders.OrderItem   `json:"items"`
	Total         decimal.Decimal      `json:"total"`
	Stages        []StageView          `json:"stages"`
	CanCancel     bool                 `json:"canCancel"`
}

type Tracking struct {
	Card
	ExpectedDelivery time.Time `json:"expectedDelivery"`
	Support          Support   `json:"support"`
}

type Service struct {
	Backend Backend
	Events  Notifier
	Support Support
}

// Gate admits plain customers only.
func Gate(id auth.Identity) error {
	switch {
	case id.Anonymous():
		return ErrUnauthenticated
	case !id.IsCustomer():
		return ErrAdminRedirect
	}
	return nil
}

func shipTo(a orders.Address) string {
	return fmt.Sprintf("%s, %s, %s", a.FullName, a.AddressLine, a.Pincode)
}

func cardOf(o orders.Order) Card {
	return Card{
		ID:            o.ID,
		OrderedAt:     o.OrderedAt,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		ShipTo:        shipTo(o.Address),
		Address:       o.Address,
		Items:         o.Items,
		Total:         o.ItemsTotal(),
		Stages:        Progress(o),
		CanCancel:     o.Status.Cancellable(),
	}
}

func (s *Service) List(ctx context.Context, id auth.Identity) ([]Card, error) {
	if err := Gate(id); err != nil {
		return nil, err
	}
	res, err := s.Backend.ListMyOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	cards := make([]Card, 0, len(res.Data))
	for _, o := range res.Data {
		cards = append(cards, cardOf(o))
	}
	return cards, nil
}

func validReason(r string) bool {
	for _, c := range CancelReasons {
		if c == r {
			return true
		}
	}
	return false
}

// Cancel cancels a Pending order. The order is re-read first and anything
// past Pending is refused without a delete. The returned list omits the
// cancelled order.
func (s *Service) Cancel(ctx context.Context, id auth.Identity, orderID int64, reason string) ([]Card, error) {
	if err := Gate(id); err != nil {
		return nil, err
	}
	if !validReason(reason) {
		return nil, ErrInvalidReason
	}
	cur, err := s.Backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	if !cur.Data.Status.Cancellable() {
		return nil, fmt.Errorf("%w: status is %s", ErrNotCancellable, cur.Data.Status)
	}
	if _, err := s.Backend.CancelOrder(ctx, orderID, reason); err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	if s.Events != nil {
		s.Events.OrdersChanged(ctx, orderID, id.Subject, orders.ReasonCancelled)
	}

	cards, err := s.List(ctx, id)
	if err != nil {
		return nil, err
	}
	kept := cards[:0]
	for _, c := range cards {
		if c.ID != orderID {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// Track builds the tracking page for one order.
func (s *Service) Track(ctx context.Context, id auth.Identity, orderID int64) (Tracking, error) {
	if id.Anonymous() {
		return Tracking{}, ErrUnauthenticated
	}
	res, err := s.Backend.GetOrder(ctx, orderID)
	if err != nil {
		return Tracking{}, fmt.Errorf("get order %d: %w", orderID, err)
	}
	o := res.Data
	c := cardOf(o)
	c.Stages = withTimestamps(o, c.Stages)
	return Tracking{
		Card:             c,
		ExpectedDelivery: ExpectedDelivery(o),
		Support:          s.Support,
	}, nil
}
