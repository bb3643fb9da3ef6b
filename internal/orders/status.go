package orders

import "strings"

type Status string

const (
	StatusPending        Status = "Pending"
	StatusProcessing     Status = "Processing"
	StatusShipped        Status = "Shipped"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusCompleted      Status = "Completed"
	StatusCancelled      Status = "Cancelled"
)

// AdminStatuses is the order of the inline status editor options.
var AdminStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCompleted,
	StatusCancelled,
}

// ParseStatus matches s against the known statuses, ignoring case and
// surrounding whitespace. Unknown values are returned as-is with ok=false so
// the caller can still display what the backend sent.
func ParseStatus(s string) (Status, bool) {
	t := strings.TrimSpace(s)
	for _, st := range AdminStatuses {
		if strings.EqualFold(string(st), t) {
			return st, true
		}
	}
	return Status(t), false
}

func (s Status) Valid() bool {
	for _, st := range AdminStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Cancellable reports whether a customer may still cancel the order.
func (s Status) Cancellable() bool { return s == StatusPending }

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

type PaymentMethod string

const (
	MethodCashOnDelivery PaymentMethod = "Cash on Delivery"
	MethodOnline         PaymentMethod = "Online Payment"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCashOnDelivery || m == MethodOnline
}
