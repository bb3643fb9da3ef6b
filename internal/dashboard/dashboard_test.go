package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

var errDown = errors.New("down")

type fakeBackend struct {
	mu sync.Mutex

	profileErr error
	count      int
	countErr   error
	byCategory map[string][]orders.Product
	catErr     map[string]error
	users      []orders.User
	usersErr   error
	all        []orders.Order
	allErr     error
	revenue    decimal.Decimal
	revenueErr error
	recent     []orders.Order
	monthly    []api.MonthlyRevenue
	current    orders.Order
	updateErr  error
	updates    []string
	gets       int
}

func (f *fakeBackend) GetProfile(context.Context) (api.Response[orders.Profile], error) {
	if f.profileErr != nil {
		return api.Response[orders.Profile]{}, f.profileErr
	}
	return api.Response[orders.Profile]{Data: orders.Profile{ID: 1, FullName: "Admin", Role: orders.RoleAdmin}}, nil
}

func (f *fakeBackend) CountProducts(context.Context) (api.Response[int], error) {
	return api.Response[int]{Data: f.count}, f.countErr
}

func (f *fakeBackend) ListProductsByCategory(_ context.Context, c string) (api.Response[[]orders.Product], error) {
	if err := f.catErr[c]; err != nil {
		return api.Response[[]orders.Product]{}, err
	}
	return api.Response[[]orders.Product]{Data: f.byCategory[c]}, nil
}

func (f *fakeBackend) ListUsers(context.Context) (api.Response[[]orders.User], error) {
	return api.Response[[]orders.User]{Data: f.users}, f.usersErr
}

func (f *fakeBackend) ListAllOrders(context.Context) (api.Response[[]orders.Order], error) {
	if f.allErr != nil {
		return api.Response[[]orders.Order]{}, f.allErr
	}
	return api.Response[[]orders.Order]{Data: f.all}, nil
}

func (f *fakeBackend) AdminGetOrder(_ context.Context, id int64) (api.Response[orders.Order], error) {
	f.mu.Lock()
	f.gets++
	f.mu.Unlock()
	return api.Response[orders.Order]{Data: f.current}, nil
}

func (f *fakeBackend) TotalRevenue(context.Context) (api.Response[decimal.Decimal], error) {
	return api.Response[decimal.Decimal]{Data: f.revenue}, f.revenueErr
}

func (f *fakeBackend) RecentOrders(context.Context) (api.Response[[]orders.Order], error) {
	return api.Response[[]orders.Order]{Data: f.recent}, nil
}

func (f *fakeBackend) MonthlyRevenue(context.Context) (api.Response[[]api.MonthlyRevenue], error) {
	return api.Response[[]api.MonthlyRevenue]{Data: f.monthly}, nil
}

func (f *fakeBackend) UpdateOrderStatus(_ context.Context, id int64, status string) (api.Response[struct{}], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return api.Response[struct{}]{}, f.updateErr
	}
	f.updates = append(f.updates, status)
	return api.Response[struct{}]{Status: http.StatusOK}, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(price string, qty int) orders.OrderItem {
	p := dec(price)
	return orders.OrderItem{Price: p, Quantity: qty, LineTotal: p.Mul(decimal.NewFromInt(int64(qty)))}
}

var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func newService(b *fakeBackend) *Service {
	return &Service{
		Backend: b,
		Now:     func() time.Time { return now },
		Intn:    func(int) int { return 0 },
	}
}

func TestLoad_RevenuePrefersBackendTotal(t *testing.T) {
	b := &fakeBackend{
		revenue: dec("1234.50"),
		all:     []orders.Order{{ID: 1, Items: []orders.OrderItem{item("10", 1)}}},
	}
	snap, err := newService(b).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Revenue.Total.Value.Equal(dec("1234.50")))
	assert.False(t, snap.Revenue.Total.Provisional)
}

func TestLoad_RevenueComputedFromOrders(t *testing.T) {
	b := &fakeBackend{
		all: []orders.Order{
			{ID: 1, Items: []orders.OrderItem{item("100", 2), item("50", 1)}},
			{ID: 2, Total: dec("75")},
		},
	}
	snap, err := newService(b).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Revenue.Total.Value.Equal(dec("325")), snap.Revenue.Total.Value.String())
	assert.True(t, snap.Revenue.Total.Provisional)
}

func TestLoad_RevenueZeroWhenNothingAvailable(t *testing.T) {
	b := &fakeBackend{revenueErr: errDown, allErr: errDown}
	snap, err := newService(b).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Revenue.Total.Value.IsZero())
	assert.True(t, snap.Revenue.Total.Provisional)
	assert.ElementsMatch(t, []string{"total_revenue", "orders"}, snap.Failed)
}

func TestLoad_PartialFailuresDegrade(t *testing.T) {
	b := &fakeBackend{
		countErr: errDown,
		byCategory: map[string][]orders.Product{
			"Men":   {{ID: 1}, {ID: 2}},
			"Women": {{ID: 3}},
		},
		catErr:   map[string]error{"Home": errDown},
		usersErr: errDown,
		all: []orders.Order{
			{ID: 1, Status: orders.StatusPending},
			{ID: 2, Status: orders.StatusCompleted},
			{ID: 3, Status: orders.StatusPending},
		},
	}
	snap, err := newService(b).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Products.Total.Value)
	assert.True(t, snap.Products.Total.Provisional)
	require.Len(t, snap.Products.ByCategory, 4)
	assert.Equal(t, CategoryCount{Name: "Home", Count: 0}, snap.Products.ByCategory[3])

	assert.Equal(t, 0, snap.Users.Total.Value)
	assert.Equal(t, 3, snap.Orders.Total.Value)
	assert.Equal(t, 2, snap.Orders.Pending.Value)
	assert.Equal(t, 1, snap.Orders.Completed.Value)
	assert.True(t, snap.Orders.Pending.Provisional)
	assert.ElementsMatch(t, []string{"product_count", "category:Home", "users"}, snap.Failed)
}

func TestLoad_ProfileFailureAborts(t *testing.T) {
	_, err := newService(&fakeBackend{profileErr: errDown}).Load(context.Background())
	require.ErrorIs(t, err, errDown)
}

func TestLoad_ProductCountFromBackend(t *testing.T) {
	b := &fakeBackend{count: 42, byCategory: map[string][]orders.Product{"Men": {{ID: 1}}}}
	snap, err := newService(b).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, exact(42), snap.Products.Total)
}

func TestLoad_UsersAndMonthlyRevenue(t *testing.T) {
	b := &fakeBackend{
		users: []orders.User{
			{ID: 1, CreatedAt: now.AddDate(0, 0, -2)},
			{ID: 2, CreatedAt: now.AddDate(0, 0, -30), Blocked: true},
			{ID: 3},
		},
		all: []orders.Order{
			{ID: 1, OrderedAt: now.AddDate(0, 0, -3), Total: dec("100")},
			{ID: 2, OrderedAt: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), Total: dec("40")},
			{ID: 3, OrderedAt: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), Total: dec("7")},
		},
	}
	snap, err := newService(b).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, provisional(3), snap.Users.Total)
	assert.Equal(t, 1, snap.Users.NewThisWeek.Value)
	assert.Equal(t, 2, snap.Users.Active.Value)
	assert.True(t, snap.Revenue.ThisMonth.Value.Equal(dec("100")))
	assert.True(t, snap.Revenue.LastMonth.Value.Equal(dec("40")))
}

func TestLoad_MonthBucketsUseUTC(t *testing.T) {
	// 01:00 on April 1st in IST is still March 31st in UTC.
	ist := time.FixedZone("IST", 5*3600+1800)
	b := &fakeBackend{all: []orders.Order{
		{ID: 1, OrderedAt: time.Date(2024, time.March, 31, 18, 0, 0, 0, time.UTC), Total: dec("60")},
		{ID: 2, OrderedAt: time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC), Total: dec("9")},
	}}
	s := newService(b)
	s.Now = func() time.Time { return time.Date(2024, time.April, 1, 1, 0, 0, 0, ist) }

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Revenue.ThisMonth.Value.Equal(dec("60")))
	assert.True(t, snap.Revenue.LastMonth.Value.Equal(dec("9")))
}

func TestLoad_RecentFallsBackToFirstFive(t *testing.T) {
	all := make([]orders.Order, 7)
	for i := range all {
		all[i] = orders.Order{ID: int64(i + 1)}
	}
	all[0].Address.FullName = "Asha"
	snap, err := newService(&fakeBackend{all: all}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Recent, 5)
	assert.Equal(t, "Asha", snap.Recent[0].CustomerName)
	assert.Equal(t, unknownCustomer, snap.Recent[1].CustomerName)
	assert.Equal(t, int64(5), snap.Recent[4].ID)
}

func TestLoad_RecentFromBackend(t *testing.T) {
	b := &fakeBackend{
		recent: []orders.Order{{ID: 9}},
		all:    []orders.Order{{ID: 1}, {ID: 2}},
	}
	snap, err := newService(b).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Recent, 1)
	assert.Equal(t, int64(9), snap.Recent[0].ID)
}

func TestLoad_MonthlySeries(t *testing.T) {
	t.Run("backend", func(t *testing.T) {
		pts := []api.MonthlyRevenue{{Month: "Jan", Revenue: dec("10")}}
		snap, err := newService(&fakeBackend{monthly: pts}).Load(context.Background())
		require.NoError(t, err)
		assert.False(t, snap.Monthly.Synthetic)
		assert.Equal(t, pts, snap.Monthly.Points)
	})
	t.Run("placeholder", func(t *testing.T) {
		snap, err := newService(&fakeBackend{}).Load(context.Background())
		require.NoError(t, err)
		assert.True(t, snap.Monthly.Synthetic)
		require.Len(t, snap.Monthly.Points, 12)
	})
}

func TestPlaceholderSeries(t *testing.T) {
	s := placeholderSeries(now, func(n int) int { return n - 1 })
	require.Len(t, s.Points, 12)
	assert.Equal(t, "Jan", s.Points[0].Month)
	for i, p := range s.Points {
		if i <= 2 {
			assert.True(t, p.Revenue.Equal(decimal.NewFromInt(14999)), p.Month)
		} else {
			assert.True(t, p.Revenue.IsZero(), p.Month)
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Run("pending to shipped", func(t *testing.T) {
		b := &fakeBackend{}
		bus := events.NewBus()
		ch, cancel := bus.Subscribe()
		defer cancel()
		s := newService(b)
		s.Events = bus

		c, err := s.UpdateStatus(context.Background(), 7, orders.StatusPending, "Shipped")
		require.NoError(t, err)
		assert.Equal(t, Delta{Pending: -1}, c.Delta)
		assert.Equal(t, []string{"Shipped"}, b.updates)

		ev := <-ch
		assert.Equal(t, int64(7), ev.OrderID)
		assert.Equal(t, orders.ReasonStatusUpdated, ev.Reason)
	})

	t.Run("to completed", func(t *testing.T) {
		c, err := newService(&fakeBackend{}).UpdateStatus(context.Background(), 7, orders.StatusShipped, "completed")
		require.NoError(t, err)
		assert.Equal(t, orders.StatusCompleted, c.To)
		assert.Equal(t, Delta{Completed: 1}, c.Delta)
	})

	t.Run("unchanged is a no-op", func(t *testing.T) {
		b := &fakeBackend{}
		c, err := newService(b).UpdateStatus(context.Background(), 7, orders.StatusShipped, "Shipped")
		require.NoError(t, err)
		assert.True(t, c.Noop())
		assert.Empty(t, b.updates)
	})

	t.Run("empty status", func(t *testing.T) {
		b := &fakeBackend{}
		_, err := newService(b).UpdateStatus(context.Background(), 7, orders.StatusPending, "  ")
		require.ErrorIs(t, err, ErrEmptyStatus)
		assert.Empty(t, b.updates)
	})

	t.Run("unknown status", func(t *testing.T) {
		b := &fakeBackend{}
		_, err := newService(b).UpdateStatus(context.Background(), 7, orders.StatusPending, "Lost")
		require.ErrorIs(t, err, ErrInvalidStatus)
		assert.Empty(t, b.updates)
	})

	t.Run("reads current status when unknown", func(t *testing.T) {
		b := &fakeBackend{current: orders.Order{ID: 7, UserID: 31, Status: orders.StatusCompleted}}
		bus := events.NewBus()
		ch, cancel := bus.Subscribe()
		defer cancel()
		s := newService(b)
		s.Events = bus

		c, err := s.UpdateStatus(context.Background(), 7, "", "Pending")
		require.NoError(t, err)
		assert.Equal(t, 1, b.gets)
		assert.Equal(t, Delta{Pending: 1, Completed: -1}, c.Delta)
		assert.Equal(t, "31", (<-ch).Subject)
	})

	for _, tc := range []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "Invalid request. Please check the status value."},
		{http.StatusNotFound, "Order not found."},
		{http.StatusInternalServerError, "Failed to update order status. Please try again."},
	} {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			b := &fakeBackend{updateErr: &api.APIError{Status: tc.status}}
			_, err := newService(b).UpdateStatus(context.Background(), 7, orders.StatusPending, "Shipped")
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.want, se.Message)
		})
	}
}

func TestSnapshotApply(t *testing.T) {
	snap := &Snapshot{
		Orders: OrderStats{Pending: provisional(3), Completed: provisional(1)},
		Recent: []RecentOrder{{ID: 7, Status: orders.StatusPending}, {ID: 8, Status: orders.StatusPending}},
	}
	snap.Apply(StatusChange{OrderID: 7, From: orders.StatusPending, To: orders.StatusCompleted,
		Delta: deltaFor(orders.StatusPending, orders.StatusCompleted)})

	assert.Equal(t, 2, snap.Orders.Pending.Value)
	assert.Equal(t, 2, snap.Orders.Completed.Value)
	assert.Equal(t, orders.StatusCompleted, snap.Recent[0].Status)
	assert.Equal(t, orders.StatusPending, snap.Recent[1].Status)

	snap.Apply(StatusChange{OrderID: 8, From: orders.StatusPending, To: orders.StatusPending})
	assert.Equal(t, 2, snap.Orders.Pending.Value)
}
