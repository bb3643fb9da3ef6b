package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/payments"
)

type fakeBackend struct {
	mu sync.Mutex

	profile   orders.Profile
	cart      []orders.CartItem
	addresses []orders.Address
	nextAddr  int64

	listErr, createAddrErr, deleteAddrErr, orderErr, removeErr error

	created   []orders.Address
	updated   map[int64]orders.Address
	orders    []orders.PlaceOrderRequest
	removed   []int64
	nextOrder int64
}

func (f *fakeBackend) GetProfile(context.Context) (api.Response[orders.Profile], error) {
	return api.Response[orders.Profile]{Data: f.profile, Status: 200}, nil
}

func (f *fakeBackend) GetCart(context.Context) (api.Response[[]orders.CartItem], error) {
	return api.Response[[]orders.CartItem]{Data: append([]orders.CartItem(nil), f.cart...), Status: 200}, nil
}

func (f *fakeBackend) RemoveCartItem(_ context.Context, id int64) (api.Response[struct{}], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return api.Response[struct{}]{}, f.removeErr
}

func (f *fakeBackend) ListAddresses(context.Context) (api.Response[[]orders.Address], error) {
	if f.listErr != nil {
		return api.Response[[]orders.Address]{}, f.listErr
	}
	return api.Response[[]orders.Address]{Data: append([]orders.Address(nil), f.addresses...), Status: 200}, nil
}

func (f *fakeBackend) CreateAddress(_ context.Context, a orders.Address) (api.Response[orders.Address], error) {
	f.created = append(f.created, a)
	if f.createAddrErr != nil {
		return api.Response[orders.Address]{}, f.createAddrErr
	}
	f.nextAddr++
	a.ID = 100 + f.nextAddr
	f.addresses = append(f.addresses, a)
	return api.Response[orders.Address]{Data: a, Status: 201}, nil
}

func (f *fakeBackend) UpdateAddress(_ context.Context, id int64, a orders.Address) (api.Response[orders.Address], error) {
	if f.updated == nil {
		f.updated = map[int64]orders.Address{}
	}
	f.updated[id] = a
	for i := range f.addresses {
		if f.addresses[i].ID == id {
			a.ID = id
			f.addresses[i] = a
		}
	}
	return api.Response[orders.Address]{Data: a, Status: 200}, nil
}

func (f *fakeBackend) DeleteAddress(_ context.Context, id int64) (api.Response[struct{}], error) {
	if f.deleteAddrErr != nil {
		return api.Response[struct{}]{}, f.deleteAddrErr
	}
	kept := f.addresses[:0]
	for _, a := range f.addresses {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	f.addresses = kept
	return api.Response[struct{}]{Status: 204}, nil
}

func (f *fakeBackend) CreateOrder(_ context.Context, req orders.PlaceOrderRequest) (api.Response[api.PlacedOrder], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return api.Response[api.PlacedOrder]{}, f.orderErr
	}
	f.orders = append(f.orders, req)
	f.nextOrder++
	return api.Response[api.PlacedOrder]{Data: api.PlacedOrder{OrderID: 500 + f.nextOrder}, Status: 201}, nil
}

// memStore round-trips through JSON like the Redis store does.
type memStore struct {
	sessions map[string][]byte
	payments map[string]PaidOrder
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string][]byte{}, payments: map[string]PaidOrder{}}
}

func (m *memStore) Load(_ context.Context, id string) (*Session, error) {
	b, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	var st stored
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, err
	}
	st.Session.UserID = st.Owner
	return &st.Session, nil
}

func (m *memStore) Save(_ context.Context, s *Session) error {
	b, err := json.Marshal(stored{Session: *s, Owner: s.UserID})
	if err != nil {
		return err
	}
	m.sessions[s.ID] = b
	return nil
}

func (m *memStore) RememberPayment(_ context.Context, paymentID string, p PaidOrder) error {
	m.payments[paymentID] = p
	return nil
}

func (m *memStore) PaymentOrder(_ context.Context, paymentID string) (PaidOrder, bool, error) {
	p, ok := m.payments[paymentID]
	return p, ok, nil
}

// memJournal mimics the row lock with a mutex.
type memJournal struct {
	mu      sync.Mutex
	intents map[string]*payments.Intent
	openErr error
	n       int
}

func newMemJournal() *memJournal { return &memJournal{intents: map[string]*payments.Intent{}} }

func (j *memJournal) Open(_ context.Context, in payments.Intent) (payments.Intent, error) {
	if j.openErr != nil {
		return payments.Intent{}, j.openErr
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.n++
	in.ID = "intent-" + string(rune('0'+j.n))
	in.Status = payments.StatusOpened
	cp := in
	j.intents[in.ID] = &cp
	return in, nil
}

func (j *memJournal) Claim(ctx context.Context, id, paymentID, signature string, place payments.PlaceFunc) (int64, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	in, ok := j.intents[id]
	if !ok {
		return 0, false, payments.ErrIntentNotFound
	}
	if in.Status == payments.StatusOrdered {
		return in.OrderID, true, nil
	}
	in.Status, in.PaymentID, in.Signature = payments.StatusPaid, paymentID, signature
	orderID, err := place(ctx, *in)
	if err != nil {
		return 0, false, err
	}
	in.Status, in.OrderID = payments.StatusOrdered, orderID
	return orderID, false, nil
}

type recordedEvents struct{ got []events.Event }

func (r *recordedEvents) OrdersChanged(_ context.Context, orderID int64, subject, reason string) events.Event {
	e := events.Event{OrderID: orderID, Subject: subject, Reason: reason}
	r.got = append(r.got, e)
	return e
}

var errBoom = errors.New("boom")
