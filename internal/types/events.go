package types

import (
	"encoding/json"
	"time"
)

// EventName is the name of a domain event published on the event bus
type EventName string

const (
	EventReturnRequested EventName = "return.requested"
	EventReturnCompleted EventName = "return.completed"
	EventReturnRejected  EventName = "return.rejected"
	EventOrderPlaced     EventName = "order.placed"
)

// Event is the envelope published for downstream consumers such as the
// customer notification mailer
type Event struct {
	ID        string          `json:"id"`
	EventName EventName       `json:"event_name"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ReturnEventPayload is the payload of every return.* event
type ReturnEventPayload struct {
	ReturnID         string       `json:"return_id"`
	ReturnNumber     string       `json:"return_number"`
	OrderID          string       `json:"order_id"`
	CustomerID       string       `json:"customer_id"`
	ReturnStatus     ReturnStatus `json:"return_status"`
	RefundCents      int64        `json:"refund_cents"`
	ShippingRefunded bool         `json:"shipping_refunded"`
	Currency         string       `json:"currency,omitempty"`
}

// OrderEventPayload is the payload of order.* events
type OrderEventPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	CustomerID  string `json:"customer_id"`
	TotalCents  int64  `json:"total_cents"`
	Currency    string `json:"currency"`
}

// NewEvent wraps payload in an envelope with a fresh id
func NewEvent(name EventName, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        GenerateUUIDWithPrefix(UUID_PREFIX_EVENT),
		EventName: name,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}
