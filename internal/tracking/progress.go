package tracking

import (
	"time"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

type StageState string

const (
	StateComplete StageState = "complete"
	StateActive   StageState = "active"
	StatePending  StageState = "pending"
)

const (
	pendingNote = "We are updating soon"
	// deliveryEstimate is a display estimate, not a backend promise.
	deliveryEstimate = 4 * 24 * time.Hour
)

type StageView struct {
	Stage orders.Stage `json:"stage"`
	State StageState   `json:"state"`
	// At is when the stage was reached; nil means not available.
	At   *time.Time `json:"at"`
	Note string     `json:"note,omitempty"`
	// Expected is set on Out for Delivery once it is reached.
	Expected *time.Time `json:"expected,omitempty"`
}

// Progress lays the order on the canonical stage list. Cancelled orders have
// no stages at all.
func Progress(o orders.Order) []StageView {
	if o.Status == orders.StatusCancelled {
		return nil
	}
	cur := orders.StageIndex(o.Status)
	out := make([]StageView, len(orders.Stages))
	for i, st := range orders.Stages {
		v := StageView{Stage: st, State: StatePending}
		switch {
		case cur < 0:
		case i < cur:
			v.State = StateComplete
		case i == cur:
			v.State = StateActive
			if o.Status == orders.StatusPending {
				v.Note = pendingNote
			}
		}
		out[i] = v
	}
	return out
}

// ExpectedDelivery is the order date plus four days.
func ExpectedDelivery(o orders.Order) time.Time {
	return o.OrderedAt.Add(deliveryEstimate)
}

// withTimestamps fills At from the backend's per-stage map, or, without one,
// puts the order date on Confirmed only.
func withTimestamps(o orders.Order, stages []StageView) []StageView {
	cur := orders.StageIndex(o.Status)
	for i := range stages {
		st := stages[i].Stage
		if len(o.StageTimes) > 0 {
			if t, ok := o.StageTimes[st]; ok {
				stages[i].At = &t
			}
		} else if st == orders.StageConfirmed && !o.OrderedAt.IsZero() {
			t := o.OrderedAt
			stages[i].At = &t
		}
		if st == orders.StageOutForDelivery && cur >= 0 && i <= cur && !o.OrderedAt.IsZero() {
			e := ExpectedDelivery(o)
			stages[i].Expected = &e
		}
	}
	return stages
}
