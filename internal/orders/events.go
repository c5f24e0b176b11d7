package orders

import (
	"encoding/json"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
)

const EventAvailabilityChanged = "ProductAvailabilityChanged"

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid, dedup key downstream
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type AvailabilityChangedPayload struct {
	ProductID string              `json:"product_id"`
	Intent    availability.Intent `json:"intent"`
	OrderID   string              `json:"order_id"`
	Reason    string              `json:"reason"` // order_created | order_cancelled
}

// AvailabilityIntent is one pending product availability change caused by an
// order mutation.
type AvailabilityIntent struct {
	EventID   string
	OrderID   string
	ProductID string
	Intent    availability.Intent
	Reason    string
}

const (
	ReasonOrderCreated   = "order_created"
	ReasonOrderCancelled = "order_cancelled"
)

// Envelope wraps the intent for the outbox. The intent's EventID becomes the
// envelope id so redelivery can be detected by consumers.
func (i AvailabilityIntent) Envelope(producer string, at time.Time) (Envelope, error) {
	payload, err := json.Marshal(AvailabilityChangedPayload{
		ProductID: i.ProductID,
		Intent:    i.Intent,
		OrderID:   i.OrderID,
		Reason:    i.Reason,
	})
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       i.EventID,
		EventType:     EventAvailabilityChanged,
		EventVersion:  1,
		OccurredAt:    at.UTC(),
		Producer:      producer,
		CorrelationID: i.OrderID,
		Payload:       payload,
	}, nil
}
