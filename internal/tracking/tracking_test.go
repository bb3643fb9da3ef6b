package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

type fakeBackend struct {
	orders    map[int64]orders.Order
	cancelled []int64
	reasons   []string
}

func (f *fakeBackend) ListMyOrders(context.Context) (api.Response[[]orders.Order], error) {
	var out []orders.Order
	for _, id := range []int64{1, 2, 3, 4} {
		if o, ok := f.orders[id]; ok {
			out = append(out, o)
		}
	}
	return api.Response[[]orders.Order]{Data: out, Status: 200}, nil
}

func (f *fakeBackend) GetOrder(_ context.Context, id int64) (api.Response[orders.Order], error) {
	o, ok := f.orders[id]
	if !ok {
		return api.Response[orders.Order]{}, &api.APIError{Status: 404, Message: "Order not found"}
	}
	return api.Response[orders.Order]{Data: o, Status: 200}, nil
}

func (f *fakeBackend) CancelOrder(_ context.Context, id int64, reason string) (api.Response[struct{}], error) {
	f.cancelled = append(f.cancelled, id)
	f.reasons = append(f.reasons, reason)
	o := f.orders[id]
	o.Status = orders.StatusCancelled
	f.orders[id] = o
	return api.Response[struct{}]{Status: 200}, nil
}

var customer = auth.Identity{Subject: "7", Role: "user"}

func order(id int64, st orders.Status) orders.Order {
	return orders.Order{
		ID:        id,
		Status:    st,
		OrderedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Address:   orders.Address{FullName: "Asha Rao", AddressLine: "12 MG Road", Pincode: "560001"},
		Items: []orders.OrderItem{
			{Name: "Runner", Price: decimal.NewFromInt(500), Quantity: 2, LineTotal: decimal.NewFromInt(1000)},
			{Name: "Socks", Price: decimal.NewFromInt(50), Quantity: 1, LineTotal: decimal.NewFromInt(50)},
		},
		Total: decimal.NewFromInt(1103),
	}
}

func states(vs []StageView) []StageState {
	out := make([]StageState, len(vs))
	for i, v := range vs {
		out[i] = v.State
	}
	return out
}

func TestProgress(t *testing.T) {
	c, a, p := StateComplete, StateActive, StatePending
	cases := []struct {
		status orders.Status
		want   []StageState
	}{
		{orders.StatusPending, []StageState{a, p, p, p, p}},
		{orders.StatusProcessing, []StageState{c, a, p, p, p}},
		{orders.StatusShipped, []StageState{c, c, a, p, p}},
		{orders.StatusOutForDelivery, []StageState{c, c, c, a, p}},
		{orders.StatusDelivered, []StageState{c, c, c, c, a}},
		{orders.StatusCompleted, []StageState{c, c, c, c, a}},
		{orders.Status("Lost"), []StageState{p, p, p, p, p}},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			got := Progress(order(1, tc.status))
			assert.Equal(t, tc.want, states(got))
			active := 0
			for _, v := range got {
				if v.State == StateActive {
					active++
				}
			}
			assert.LessOrEqual(t, active, 1)
		})
	}

	assert.Empty(t, Progress(order(1, orders.StatusCancelled)))
	assert.Equal(t, "We are updating soon", Progress(order(1, orders.StatusPending))[0].Note)
	assert.Empty(t, Progress(order(1, orders.StatusShipped))[2].Note)
}

func TestGate(t *testing.T) {
	assert.ErrorIs(t, Gate(auth.Identity{}), ErrUnauthenticated)
	assert.ErrorIs(t, Gate(auth.Identity{Subject: "1", Role: "Admin"}), ErrAdminRedirect)
	assert.NoError(t, Gate(customer))
}

func TestList(t *testing.T) {
	be := &fakeBackend{orders: map[int64]orders.Order{1: order(1, orders.StatusPending), 2: order(2, orders.StatusShipped)}}
	svc := &Service{Backend: be}

	cards, err := svc.List(context.Background(), customer)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.True(t, cards[0].CanCancel)
	assert.False(t, cards[1].CanCancel)
	assert.Equal(t, "Asha Rao, 12 MG Road, 560001", cards[0].ShipTo)
	assert.True(t, cards[0].Total.Equal(decimal.NewFromInt(1050)), "card total is the sum of line totals")

	_, err = svc.List(context.Background(), auth.Identity{Subject: "1", Role: "Admin"})
	assert.ErrorIs(t, err, ErrAdminRedirect)
}

func TestCancel(t *testing.T) {
	be := &fakeBackend{orders: map[int64]orders.Order{1: order(1, orders.StatusPending), 2: order(2, orders.StatusShipped)}}
	bus := events.NewBus()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	svc := &Service{Backend: be, Events: bus}

	_, err := svc.Cancel(context.Background(), customer, 1, "Because")
	assert.ErrorIs(t, err, ErrInvalidReason)

	_, err = svc.Cancel(context.Background(), customer, 2, "Other")
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Empty(t, be.cancelled, "no delete for non-pending orders")

	cards, err := svc.Cancel(context.Background(), customer, 1, "Ordered by mistake")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, be.cancelled)
	assert.Equal(t, []string{"Ordered by mistake"}, be.reasons)
	require.Len(t, cards, 1)
	assert.Equal(t, int64(2), cards[0].ID)

	e := <-ch
	assert.Equal(t, int64(1), e.OrderID)
	assert.Equal(t, orders.ReasonCancelled, e.Reason)
	assert.Equal(t, customer.Subject, e.Subject)
}

func TestTrack(t *testing.T) {
	be := &fakeBackend{orders: map[int64]orders.Order{}}
	svc := &Service{Backend: be, Support: Support{Email: "help@shoes.example", Phone: "+91 80 0000 0000", Hours: "9-6"}}

	t.Run("without stage timestamps", func(t *testing.T) {
		be.orders[3] = order(3, orders.StatusOutForDelivery)
		tr, err := svc.Track(context.Background(), customer, 3)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 5, 5, 9, 30, 0, 0, time.UTC), tr.ExpectedDelivery)
		require.NotNil(t, tr.Stages[0].At)
		assert.Equal(t, be.orders[3].OrderedAt, *tr.Stages[0].At)
		for _, v := range tr.Stages[1:] {
			assert.Nil(t, v.At, v.Stage)
		}
		require.NotNil(t, tr.Stages[3].Expected)
		assert.Equal(t, "help@shoes.example", tr.Support.Email)
	})

	t.Run("with stage timestamps", func(t *testing.T) {
		o := order(4, orders.StatusShipped)
		shipped := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
		o.StageTimes = map[orders.Stage]time.Time{orders.StageShipped: shipped}
		be.orders[4] = o

		tr, err := svc.Track(context.Background(), customer, 4)
		require.NoError(t, err)
		assert.Nil(t, tr.Stages[0].At, "backend map wins over the order date")
		require.NotNil(t, tr.Stages[2].At)
		assert.Equal(t, shipped, *tr.Stages[2].At)
		assert.Nil(t, tr.Stages[3].Expected)
	})

	t.Run("cancelled", func(t *testing.T) {
		be.orders[1] = order(1, orders.StatusCancelled)
		tr, err := svc.Track(context.Background(), customer, 1)
		require.NoError(t, err)
		assert.Empty(t, tr.Stages)
		assert.False(t, tr.CanCancel)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Track(context.Background(), customer, 99)
		assert.Equal(t, api.KindNotFound, api.KindOf(err))
	})
}
