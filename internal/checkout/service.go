// Package checkout runs the address → payment → placement flow.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/payments"
)

// Backend is the part of the REST client checkout needs.
type Backend interface {
	GetProfile(ctx context.Context) (api.Response[orders.Profile], error)
	GetCart(ctx context.Context) (api.Response[[]orders.CartItem], error)
	RemoveCartItem(ctx context.Context, itemID int64) (api.Response[struct{}], error)
	ListAddresses(ctx context.Context) (api.Response[[]orders.Address], error)
	CreateAddress(ctx context.Context, a orders.Address) (api.Response[orders.Address], error)
	UpdateAddress(ctx context.Context, id int64, a orders.Address) (api.Response[orders.Address], error)
	DeleteAddress(ctx context.Context, id int64) (api.Response[struct{}], error)
	CreateOrder(ctx context.Context, req orders.PlaceOrderRequest) (api.Response[api.PlacedOrder], error)
}

type Journal interface {
	Open(ctx context.Context, in payments.Intent) (payments.Intent, error)
	Claim(ctx context.Context, id, paymentID, signature string, place payments.PlaceFunc) (int64, bool, error)
}

type Notifier interface {
	OrdersChanged(ctx context.Context, orderID int64, subject, reason string) events.Event
}

// BannerError is a failure shown to the user as a dismissable banner. The
// session is saved with Error set to Message.
type BannerError struct {
	Message string
	Err     error
}

func (e *BannerError) Error() string { return e.Message }
func (e *BannerError) Unwrap() error { return e.Err }

type Service struct {
	Backend Backend
	Store   Store
	Journal Journal
	Events  Notifier
	Gateway Gateway
	Log     *slog.Logger
	// Record, when set, is told the outcome of placements and payments.
	Record func(op string, ok bool)
	Now    func() time.Time
}

func (s *Service) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

func (s *Service) record(op string, ok bool) {
	if s.Record != nil {
		s.Record(op, ok)
	}
}

func fail(sess *Session, msg string, err error) error {
	sess.Error = msg
	return &BannerError{Message: msg, Err: err}
}

// Start opens a checkout for userID from the current profile, cart and saved
// addresses. An empty cart returns ErrEmptyCart and no session.
func (s *Service) Start(ctx context.Context, userID string) (*Session, error) {
	prof, err := s.Backend.GetProfile(ctx)
	if err != nil {
		return nil, &BannerError{Message: msgLoadFailed, Err: err}
	}
	cart, err := s.Backend.GetCart(ctx)
	if err != nil {
		return nil, &BannerError{Message: msgLoadFailed, Err: err}
	}
	if len(cart.Data) == 0 {
		return nil, ErrEmptyCart
	}

	sess := &Session{
		ID:      uuid.NewString(),
		UserID:  userID,
		Step:    StepAddress,
		Profile: prof.Data,
		Cart:    cart.Data,
	}
	sess.Draft = sess.blankDraft()
	addrs, err := s.Backend.ListAddresses(ctx)
	if err != nil {
		s.log().Warn("load addresses failed", "session", sess.ID, "err", err)
		sess.FormOpen = true
	} else {
		sess.applyAddresses(addrs.Data)
	}
	sess.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Get returns the caller's session.
func (s *Service) Get(ctx context.Context, userID, id string) (*Session, error) {
	sess, err := s.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// mutate loads, applies fn and saves. fn's error is returned alongside the
// saved session so banner failures persist.
func (s *Service) mutate(ctx context.Context, userID, id string, fn func(*Session) error) (*Session, error) {
	sess, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sess.Step == StepPlaced {
		return sess, ErrSessionClosed
	}
	ferr := fn(sess)
	sess.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, errors.Join(ferr, fmt.Errorf("save session: %w", err))
	}
	return sess, ferr
}

func (s *Service) SelectAddress(ctx context.Context, userID, id string, addressID int64) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		for _, a := range sess.Addresses {
			if a.ID == addressID {
				sess.Selected = addressID
				return nil
			}
		}
		return ErrUnknownAddress
	})
}

// UpdateDraft replaces the address form contents.
func (s *Service) UpdateDraft(ctx context.Context, userID, id string, draft orders.Address) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		draft.ID = sess.EditingID
		sess.Draft = draft
		return nil
	})
}

// ToggleNewAddress opens the form for a new address, or closes it when it
// is open and there are saved addresses to choose from.
func (s *Service) ToggleNewAddress(ctx context.Context, userID, id string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		if sess.EditingID != 0 {
			sess.Draft = sess.blankDraft()
		}
		sess.EditingID = 0
		sess.FormOpen = !sess.FormOpen || len(sess.Addresses) == 0
		return nil
	})
}

func (s *Service) EditAddress(ctx context.Context, userID, id string, addressID int64) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		for _, a := range sess.Addresses {
			if a.ID == addressID {
				sess.EditingID = a.ID
				sess.Draft = a
				sess.FormOpen = true
				return nil
			}
		}
		return ErrUnknownAddress
	})
}

// SaveAddress creates (or, when editing, updates) the draft address and
// reloads the list. An incomplete draft is rejected without calling the
// backend.
func (s *Service) SaveAddress(ctx context.Context, userID, id string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		if missing := sess.Draft.Missing(); len(missing) > 0 {
			return fmt.Errorf("%w: missing %v", ErrInvalidAddress, missing)
		}
		var err error
		if sess.EditingID != 0 {
			_, err = s.Backend.UpdateAddress(ctx, sess.EditingID, sess.Draft)
		} else {
			_, err = s.Backend.CreateAddress(ctx, sess.Draft)
		}
		if err != nil {
			return fail(sess, api.MessageOr(err, msgSaveAddress), err)
		}

		sess.EditingID = 0
		list, err := s.Backend.ListAddresses(ctx)
		if err != nil {
			return fail(sess, msgLoadFailed, err)
		}
		sess.applyAddresses(list.Data)
		sess.Draft = sess.blankDraft()
		return nil
	})
}

func (s *Service) DeleteAddress(ctx context.Context, userID, id string, addressID int64) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		if _, err := s.Backend.DeleteAddress(ctx, addressID); err != nil {
			if api.StatusOf(err) == http.StatusInternalServerError {
				return fail(sess, msgDeleteLinked, err)
			}
			return fail(sess, api.MessageOr(err, msgDeleteAddress), err)
		}
		kept := make([]orders.Address, 0, len(sess.Addresses))
		for _, a := range sess.Addresses {
			if a.ID != addressID {
				kept = append(kept, a)
			}
		}
		if sess.EditingID == addressID {
			sess.EditingID = 0
			sess.Draft = sess.blankDraft()
		}
		sess.applyAddresses(kept)
		return nil
	})
}

// Continue moves to the payment step once there is somewhere to deliver.
func (s *Service) Continue(ctx context.Context, userID, id string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		if sess.Step != StepAddress {
			return ErrWrongStep
		}
		if _, ok := sess.deliveryAddress(); !ok {
			return fail(sess, msgNoAddress, ErrNoAddress)
		}
		sess.Step = StepPayment
		return nil
	})
}

// Back returns to the address step. A pending gateway handoff is dropped.
func (s *Service) Back(ctx context.Context, userID, id string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		if sess.Step != StepPayment {
			return ErrWrongStep
		}
		sess.Step = StepAddress
		sess.Payment = nil
		return nil
	})
}

func (s *Service) SetPaymentMethod(ctx context.Context, userID, id string, m orders.PaymentMethod) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		if !m.Valid() {
			return ErrInvalidMethod
		}
		if sess.Step != StepPayment {
			return ErrWrongStep
		}
		if sess.Method != m {
			sess.Payment = nil
		}
		sess.Method = m
		return nil
	})
}

// ready checks what every placement needs and returns the delivery address.
func ready(sess *Session, want orders.PaymentMethod) (orders.Address, error) {
	if sess.Step != StepPayment {
		return orders.Address{}, ErrWrongStep
	}
	if sess.Method != want {
		return orders.Address{}, ErrWrongMethod
	}
	if len(sess.Cart) == 0 {
		return orders.Address{}, fail(sess, msgEmptyCart, ErrEmptyCart)
	}
	addr, ok := sess.deliveryAddress()
	if !ok {
		return orders.Address{}, fail(sess, msgNoAddress, ErrNoAddress)
	}
	return addr, nil
}

// Place places a cash-on-delivery order.
func (s *Service) Place(ctx context.Context, userID, id string) (*Session, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) error {
		addr, err := ready(sess, orders.MethodCashOnDelivery)
		if err != nil {
			return err
		}
		orderID, err := s.createOrder(ctx, sess, addr, orders.PaymentPending, "", "")
		s.record("place_order", err == nil)
		if err != nil {
			return err
		}
		s.finish(ctx, sess, orderID)
		return nil
	})
}

// InitiatePayment records a payment intent and returns the gateway handoff.
// No order exists until CompletePayment succeeds.
func (s *Service) InitiatePayment(ctx context.Context, userID, id string) (*Session, Handoff, error) {
	var h Handoff
	sess, err := s.mutate(ctx, userID, id, func(sess *Session) error {
		addr, err := ready(sess, orders.MethodOnline)
		if err != nil {
			return err
		}
		amount := Subunits(Total(sess.Cart, orders.MethodOnline))
		in, err := s.Journal.Open(ctx, payments.Intent{
			SessionID:      sess.ID,
			UserID:         sess.UserID,
			AmountSubunits: amount,
			Currency:       s.Gateway.Currency,
		})
		if err != nil {
			s.record("initiate_payment", false)
			return fail(sess, msgInitiatePayment, err)
		}
		s.record("initiate_payment", true)
		sess.Payment = &PendingPayment{IntentID: in.ID, AmountSubunits: amount}
		h = Handoff{
			IntentID:    in.ID,
			Key:         s.Gateway.KeyID,
			Amount:      amount,
			Currency:    s.Gateway.Currency,
			Name:        s.Gateway.StoreName,
			Description: "Order Payment",
			Prefill: Prefill{
				Name:    sess.Profile.FullName,
				Email:   sess.Profile.Email,
				Contact: addr.PhoneNumber,
			},
		}
		return nil
	})
	return sess, h, err
}

// CompletePayment places the order for a successful gateway callback.
// Repeated callbacks for the same payment return the order already placed.
func (s *Service) CompletePayment(ctx context.Context, userID, id string, cb Callback) (*Session, error) {
	sess, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sess.Step == StepPlaced {
		return sess, nil
	}
	if cb.PaymentID == "" || cb.Signature == "" {
		return sess, ErrPaymentIncomplete
	}
	if sess.Payment == nil {
		return sess, ErrNoIntent
	}
	if cb.IntentID == "" {
		cb.IntentID = sess.Payment.IntentID
	}
	if cb.IntentID != sess.Payment.IntentID {
		return sess, ErrNoIntent
	}

	ferr := s.completePayment(ctx, sess, cb)
	sess.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, errors.Join(ferr, fmt.Errorf("save session: %w", err))
	}
	return sess, ferr
}

func (s *Service) completePayment(ctx context.Context, sess *Session, cb Callback) error {
	if !s.Gateway.verify(cb) {
		s.record("complete_payment", false)
		return fail(sess, msgSignature, ErrBadSignature)
	}
	// Only trust the shortcut for the intent it was recorded against.
	if p, ok, err := s.Store.PaymentOrder(ctx, cb.PaymentID); err == nil && ok && p.IntentID == cb.IntentID {
		s.markPlaced(sess, p.OrderID)
		return nil
	}
	addr, err := ready(sess, orders.MethodOnline)
	if err != nil {
		return err
	}

	orderID, existed, err := s.Journal.Claim(ctx, cb.IntentID, cb.PaymentID, cb.Signature,
		func(ctx context.Context, _ payments.Intent) (int64, error) {
			return s.createOrder(ctx, sess, addr, orders.PaymentPaid, cb.PaymentID, cb.Signature)
		})
	s.record("complete_payment", err == nil)
	if err != nil {
		var be *BannerError
		if errors.As(err, &be) {
			return err
		}
		return fail(sess, msgPlaceFailed+msgPlaceFallback, err)
	}
	if err := s.Store.RememberPayment(ctx, cb.PaymentID, PaidOrder{IntentID: cb.IntentID, OrderID: orderID}); err != nil {
		s.log().Warn("remember payment failed", "payment_id", cb.PaymentID, "err", err)
	}
	if existed {
		s.markPlaced(sess, orderID)
		return nil
	}
	s.finish(ctx, sess, orderID)
	return nil
}

// DismissError clears the banner.
func (s *Service) DismissError(ctx context.Context, userID, id string) (*Session, error) {
	sess, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	sess.Error = ""
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *Service) createOrder(ctx context.Context, sess *Session, addr orders.Address, ps orders.PaymentStatus, paymentID, signature string) (int64, error) {
	req := orders.PlaceOrderRequest{
		Items:         make([]orders.PlaceOrderItem, 0, len(sess.Cart)),
		PaymentMethod: sess.Method,
		PaymentStatus: ps,
		PaymentID:     paymentID,
		Signature:     signature,
		Address:       addr,
	}
	for _, it := range sess.Cart {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		req.Items = append(req.Items, orders.PlaceOrderItem{ProductID: it.ProductID, Quantity: qty})
	}
	res, err := s.Backend.CreateOrder(ctx, req)
	if err != nil {
		return 0, fail(sess, msgPlaceFailed+api.MessageOr(err, msgPlaceFallback), err)
	}
	return res.Data.OrderID, nil
}

// finish empties the cart line by line (best effort), closes the session and
// announces the new order.
func (s *Service) finish(ctx context.Context, sess *Session, orderID int64) {
	for _, it := range sess.Cart {
		itemID := it.ID
		if itemID == 0 {
			itemID = it.ProductID
		}
		if _, err := s.Backend.RemoveCartItem(ctx, itemID); err != nil {
			s.log().Warn("remove cart item failed", "session", sess.ID, "item", itemID, "err", err)
		}
	}
	s.markPlaced(sess, orderID)
	if s.Events != nil {
		s.Events.OrdersChanged(ctx, orderID, sess.UserID, orders.ReasonPlaced)
	}
}

func (s *Service) markPlaced(sess *Session, orderID int64) {
	sess.Cart = nil
	sess.Step = StepPlaced
	sess.OrderID = orderID
	sess.Redirect = "/orders"
	sess.Error = ""
}
