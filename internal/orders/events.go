package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrdersChanged = "OrdersChanged"
)

// Reasons carried by an OrdersChanged event.
const (
	ReasonPlaced        = "placed"
	ReasonCancelled     = "cancelled"
	ReasonStatusUpdated = "status_updated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrdersChangedPayload only says what happened to which order; consumers refetch.
type OrdersChangedPayload struct {
	OrderID int64  `json:"order_id,omitempty"`
	Subject string `json:"subject,omitempty"`
	Reason  string `json:"reason"`
}
