// Package dashboard assembles the admin overview from independent backend
// reads and applies inline order status edits.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

// DefaultCategories are the storefront's product categories.
var DefaultCategories = []string{"Men", "Women", "Best Deals", "Home"}

type Backend interface {
	GetProfile(ctx context.Context) (api.Response[orders.Profile], error)
	CountProducts(ctx context.Context) (api.Response[int], error)
	ListProductsByCategory(ctx context.Context, category string) (api.Response[[]orders.Product], error)
	ListUsers(ctx context.Context) (api.Response[[]orders.User], error)
	ListAllOrders(ctx context.Context) (api.Response[[]orders.Order], error)
	AdminGetOrder(ctx context.Context, id int64) (api.Response[orders.Order], error)
	TotalRevenue(ctx context.Context) (api.Response[decimal.Decimal], error)
	RecentOrders(ctx context.Context) (api.Response[[]orders.Order], error)
	MonthlyRevenue(ctx context.Context) (api.Response[[]api.MonthlyRevenue], error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (api.Response[struct{}], error)
}

type Notifier interface {
	OrdersChanged(ctx context.Context, orderID int64, subject, reason string) events.Event
}

var (
	ErrEmptyStatus   = errors.New("Please select a status")
	ErrInvalidStatus = errors.New("Invalid request. Please check the status value.")
)

// StatusError is a failed status edit with the message to show.
type StatusError struct {
	Message string
	Err     error
}

func (e *StatusError) Error() string { return e.Message }
func (e *StatusError) Unwrap() error { return e.Err }

func statusMessage(err error) string {
	switch api.StatusOf(err) {
	case http.StatusBadRequest:
		return "Invalid request. Please check the status value."
	case http.StatusNotFound:
		return "Order not found."
	}
	return "Failed to update order status. Please try again."
}

type Service struct {
	Backend    Backend
	Categories []string
	Events     Notifier
	Log        *slog.Logger
	Now        func() time.Time
	// Intn draws the placeholder chart values; defaults to math/rand.
	Intn func(n int) int
}

func (s *Service) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// now is in UTC, like the order dates the backend sends.
func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) categories() []string {
	if len(s.Categories) == 0 {
		return DefaultCategories
	}
	return s.Categories
}

// fetched collects the fan-out results; a failed read leaves its zero value.
type fetched struct {
	mu     sync.Mutex
	failed []string

	count      int
	countOK    bool
	byCategory []int
	users      []orders.User
	all        []orders.Order
	allOK      bool
	revenue    decimal.Decimal
	recent     []orders.Order
	monthly    []api.MonthlyRevenue
}

func (f *fetched) fail(name string) {
	f.mu.Lock()
	f.failed = append(f.failed, name)
	f.mu.Unlock()
}

// Load fetches the admin profile and then every dashboard read in parallel.
// No read aborts the others; each failure is logged and contributes zero.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	prof, err := s.Backend.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	cats := s.categories()
	f := &fetched{byCategory: make([]int, len(cats))}
	var g errgroup.Group
	run := func(name string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				s.log().Warn("dashboard read failed", "read", name, "err", err)
				f.fail(name)
			}
			return nil
		})
	}

	run("product_count", func() error {
		res, err := s.Backend.CountProducts(ctx)
		if err == nil {
			f.count, f.countOK = res.Data, true
		}
		return err
	})
	for i, c := range cats {
		run("category:"+c, func() error {
			res, err := s.Backend.ListProductsByCategory(ctx, c)
			if err == nil {
				f.byCategory[i] = len(res.Data)
			}
			return err
		})
	}
	run("users", func() error {
		res, err := s.Backend.ListUsers(ctx)
		if err == nil {
			f.users = res.Data
		}
		return err
	})
	run("orders", func() error {
		res, err := s.Backend.ListAllOrders(ctx)
		if err == nil {
			f.all, f.allOK = res.Data, true
		}
		return err
	})
	run("total_revenue", func() error {
		res, err := s.Backend.TotalRevenue(ctx)
		if err == nil {
			f.revenue = res.Data
		}
		return err
	})
	run("recent_orders", func() error {
		res, err := s.Backend.RecentOrders(ctx)
		if err == nil {
			f.recent = res.Data
		}
		return err
	})
	run("monthly_revenue", func() error {
		res, err := s.Backend.MonthlyRevenue(ctx)
		if err == nil {
			f.monthly = res.Data
		}
		return err
	})
	_ = g.Wait()

	return s.assemble(prof.Data, cats, f), nil
}

func (s *Service) assemble(prof orders.Profile, cats []string, f *fetched) *Snapshot {
	now := s.now()
	snap := &Snapshot{
		Profile:     prof,
		Statuses:    orders.AdminStatuses,
		Failed:      f.failed,
		GeneratedAt: now.UTC(),
	}

	sum := 0
	snap.Products.ByCategory = make([]CategoryCount, len(cats))
	for i, c := range cats {
		snap.Products.ByCategory[i] = CategoryCount{Name: c, Count: f.byCategory[i]}
		sum += f.byCategory[i]
	}
	if f.countOK {
		snap.Products.Total = exact(f.count)
	} else {
		snap.Products.Total = provisional(sum)
	}

	weekAgo := now.AddDate(0, 0, -7)
	newThisWeek, active := 0, 0
	for _, u := range f.users {
		if !u.CreatedAt.IsZero() && u.CreatedAt.After(weekAgo) {
			newThisWeek++
		}
		if !u.Blocked {
			active++
		}
	}
	snap.Users = UserStats{
		Total:       provisional(len(f.users)),
		NewThisWeek: provisional(newThisWeek),
		Active:      provisional(active),
	}

	pending, completed := 0, 0
	computed, thisMonth, lastMonth := decimal.Zero, decimal.Zero, decimal.Zero
	ty, tm := now.Year(), now.Month()
	prev := time.Date(ty, tm, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	ly, lm := prev.Year(), prev.Month()
	for _, o := range f.all {
		switch o.Status {
		case orders.StatusPending:
			pending++
		case orders.StatusCompleted:
			completed++
		}
		amt := orderAmount(o)
		computed = computed.Add(amt)
		at := o.OrderedAt.UTC()
		switch y, m := at.Year(), at.Month(); {
		case y == ty && m == tm:
			thisMonth = thisMonth.Add(amt)
		case y == ly && m == lm:
			lastMonth = lastMonth.Add(amt)
		}
	}
	snap.Orders = OrderStats{
		Total:     provisional(len(f.all)),
		Pending:   provisional(pending),
		Completed: provisional(completed),
	}

	switch {
	case f.revenue.GreaterThan(decimal.Zero):
		snap.Revenue.Total = exact(f.revenue)
	case f.allOK:
		snap.Revenue.Total = provisional(computed)
	default:
		snap.Revenue.Total = provisional(decimal.Zero)
	}
	snap.Revenue.ThisMonth = provisional(thisMonth)
	snap.Revenue.LastMonth = provisional(lastMonth)

	src := f.recent
	if len(src) == 0 {
		src = f.all
		if len(src) > 5 {
			src = src[:5]
		}
	}
	snap.Recent = make([]RecentOrder, 0, len(src))
	for _, o := range src {
		snap.Recent = append(snap.Recent, recentOf(o))
	}

	if len(f.monthly) > 0 {
		snap.Monthly = Series{Points: f.monthly}
	} else {
		intn := s.Intn
		if intn == nil {
			intn = rand.IntN
		}
		snap.Monthly = placeholderSeries(now, intn)
	}
	return snap
}

// UpdateStatus sets order id to status. from is the status the admin saw;
// when empty the order is read from the backend, which also names its owner
// for the event. An unchanged status is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, id int64, from orders.Status, status string) (StatusChange, error) {
	if strings.TrimSpace(status) == "" {
		return StatusChange{}, &StatusError{Message: ErrEmptyStatus.Error(), Err: ErrEmptyStatus}
	}
	to, ok := orders.ParseStatus(status)
	if !ok {
		return StatusChange{}, &StatusError{Message: ErrInvalidStatus.Error(), Err: ErrInvalidStatus}
	}
	var owner string
	if from == "" {
		cur, err := s.Backend.AdminGetOrder(ctx, id)
		if err != nil {
			return StatusChange{}, &StatusError{Message: statusMessage(err), Err: err}
		}
		from = cur.Data.Status
		if cur.Data.UserID != 0 {
			owner = strconv.FormatInt(cur.Data.UserID, 10)
		}
	}
	change := StatusChange{OrderID: id, From: from, To: to}
	if change.Noop() {
		return change, nil
	}

	if _, err := s.Backend.UpdateOrderStatus(ctx, id, string(to)); err != nil {
		return StatusChange{}, &StatusError{Message: statusMessage(err), Err: err}
	}
	change.Delta = deltaFor(from, to)
	if s.Events != nil {
		s.Events.OrdersChanged(ctx, id, owner, orders.ReasonStatusUpdated)
	}
	return change, nil
}
