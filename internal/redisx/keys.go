package redisx

import "time"

const (
	// Checkout session: checkout:session:{session_id} -> JSON session
	KeyCheckoutSession = "checkout:session:%s"

	// Gateway callback shortcut: idem:payment:{payment_id} -> order_id
	KeyIdemPayment = "idem:payment:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCheckoutSession = 30 * time.Minute
	TTLIdempotency     = 24 * time.Hour
	TTLDedup           = 48 * time.Hour
)
