package checkout

import (
	"time"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

type Step string

const (
	StepAddress Step = "address"
	StepPayment Step = "payment"
	StepPlaced  Step = "placed"
)

// PendingPayment is the gateway handoff awaiting its callback.
type PendingPayment struct {
	IntentID       string `json:"intentId"`
	AmountSubunits int64  `json:"amountSubunits"`
}

// Session is one checkout, owned by the user who started it.
type Session struct {
	ID        string               `json:"id"`
	UserID    string               `json:"-"`
	Step      Step                 `json:"step"`
	Profile   orders.Profile       `json:"profile"`
	Cart      []orders.CartItem    `json:"cart"`
	Addresses []orders.Address     `json:"addresses"`
	Selected  int64                `json:"selectedAddressId,omitempty"`
	Draft     orders.Address       `json:"draft"`
	EditingID int64                `json:"editingAddressId,omitempty"`
	FormOpen  bool                 `json:"formOpen"`
	Method    orders.PaymentMethod `json:"paymentMethod,omitempty"`
	Payment   *PendingPayment      `json:"payment,omitempty"`
	Error     string               `json:"error,omitempty"`
	OrderID   int64                `json:"orderId,omitempty"`
	Redirect  string               `json:"redirect,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// stored is the persisted form; UserID is hidden from the view but must
// survive a round trip through the store.
type stored struct {
	Session
	Owner string `json:"owner"`
}

func (s *Session) selected() (orders.Address, bool) {
	if s.Selected == 0 {
		return orders.Address{}, false
	}
	for _, a := range s.Addresses {
		if a.ID == s.Selected {
			return a, true
		}
	}
	return orders.Address{}, false
}

// deliveryAddress is the selected saved address, else a complete draft.
func (s *Session) deliveryAddress() (orders.Address, bool) {
	if a, ok := s.selected(); ok {
		return a, true
	}
	if s.Draft.Complete() {
		return s.Draft, true
	}
	return orders.Address{}, false
}

func (s *Session) blankDraft() orders.Address {
	return orders.Address{FullName: s.Profile.FullName, Email: s.Profile.Email}
}

// applyAddresses replaces the list, picks the first address and forces the
// form open when there is none.
func (s *Session) applyAddresses(list []orders.Address) {
	s.Addresses = list
	if len(list) > 0 {
		s.Selected = list[0].ID
		s.FormOpen = false
	} else {
		s.Selected = 0
		s.FormOpen = true
	}
}

// View is the session plus the figures derived from it.
type View struct {
	*Session
	Summary     Summary         `json:"summary"`
	DraftValid  bool            `json:"draftValid"`
	Missing     []string        `json:"missingFields,omitempty"`
	CanContinue bool            `json:"canContinue"`
	DeliverTo   *orders.Address `json:"deliverTo,omitempty"`
}

func (s *Session) View() View {
	v := View{
		Session:    s,
		Summary:    Summarize(s.Cart, s.Method),
		DraftValid: s.Draft.Complete(),
	}
	if s.FormOpen {
		v.Missing = s.Draft.Missing()
	}
	if a, ok := s.deliveryAddress(); ok {
		v.CanContinue = true
		v.DeliverTo = &a
	}
	return v
}
