package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

// Figure is a displayed number. Provisional is true when the value was
// computed here rather than reported by the backend.
type Figure[T any] struct {
	Value       T    `json:"value"`
	Provisional bool `json:"provisional"`
}

func exact[T any](v T) Figure[T]       { return Figure[T]{Value: v} }
func provisional[T any](v T) Figure[T] { return Figure[T]{Value: v, Provisional: true} }

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ProductStats struct {
	ByCategory []CategoryCount `json:"byCategory"`
	Total      Figure[int]     `json:"total"`
}

type UserStats struct {
	Total       Figure[int] `json:"total"`
	NewThisWeek Figure[int] `json:"newThisWeek"`
	Active      Figure[int] `json:"active"`
}

type OrderStats struct {
	Total     Figure[int] `json:"total"`
	Pending   Figure[int] `json:"pending"`
	Completed Figure[int] `json:"completed"`
}

type RevenueStats struct {
	Total     Figure[decimal.Decimal] `json:"total"`
	ThisMonth Figure[decimal.Decimal] `json:"thisMonth"`
	LastMonth Figure[decimal.Decimal] `json:"lastMonth"`
}

type RecentOrder struct {
	ID           int64              `json:"id"`
	CustomerName string             `json:"customerName"`
	OrderedAt    time.Time          `json:"orderedAt"`
	Amount       decimal.Decimal    `json:"amount"`
	Status       orders.Status      `json:"status"`
	Items        []orders.OrderItem `json:"items"`
}

// Series is the monthly revenue chart. Synthetic marks the cosmetic
// placeholder used when the backend has no data.
type Series struct {
	Points    []api.MonthlyRevenue `json:"points"`
	Synthetic bool                 `json:"synthetic"`
}

type Snapshot struct {
	Profile     orders.Profile  `json:"profile"`
	Products    ProductStats    `json:"products"`
	Users       UserStats       `json:"users"`
	Orders      OrderStats      `json:"orders"`
	Revenue     RevenueStats    `json:"revenue"`
	Recent      []RecentOrder   `json:"recentOrders"`
	Monthly     Series          `json:"monthlyRevenue"`
	Statuses    []orders.Status `json:"statuses"`
	Failed      []string        `json:"failed,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Delta adjusts the pending and completed counters.
type Delta struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

type StatusChange struct {
	OrderID int64         `json:"orderId"`
	From    orders.Status `json:"from"`
	To      orders.Status `json:"to"`
	Delta   Delta         `json:"delta"`
}

// Noop reports a change that did not touch the backend.
func (c StatusChange) Noop() bool { return c.From == c.To }

func deltaFor(from, to orders.Status) Delta {
	var d Delta
	switch from {
	case orders.StatusPending:
		d.Pending--
	case orders.StatusCompleted:
		d.Completed--
	}
	switch to {
	case orders.StatusPending:
		d.Pending++
	case orders.StatusCompleted:
		d.Completed++
	}
	return d
}

// Apply updates the snapshot optimistically after a successful status edit.
func (s *Snapshot) Apply(c StatusChange) {
	if c.Noop() {
		return
	}
	s.Orders.Pending.Value += c.Delta.Pending
	s.Orders.Completed.Value += c.Delta.Completed
	for i := range s.Recent {
		if s.Recent[i].ID == c.OrderID {
			s.Recent[i].Status = c.To
		}
	}
}

// orderAmount is the sum of item line totals, or the order total when the
// order came without items.
func orderAmount(o orders.Order) decimal.Decimal {
	if len(o.Items) > 0 {
		return o.ItemsTotal()
	}
	return o.Total
}

const unknownCustomer = "Unknown Customer"

func recentOf(o orders.Order) RecentOrder {
	name := o.Address.FullName
	if name == "" {
		name = unknownCustomer
	}
	items := o.Items
	if items == nil {
		items = []orders.OrderItem{}
	}
	return RecentOrder{
		ID:           o.ID,
		CustomerName: name,
		OrderedAt:    o.OrderedAt,
		Amount:       orderAmount(o),
		Status:       o.Status,
		Items:        items,
	}
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// placeholderSeries fills months up to now with random 5000–14999 and the
// rest with zero.
func placeholderSeries(now time.Time, intn func(int) int) Series {
	pts := make([]api.MonthlyRevenue, len(monthNames))
	cur := int(now.Month()) - 1
	for i, m := range monthNames {
		v := int64(0)
		if i <= cur {
			v = int64(5000 + intn(10000))
		}
		pts[i] = api.MonthlyRevenue{Month: m, Revenue: decimal.NewFromInt(v)}
	}
	return Series{Points: pts, Synthetic: true}
}
