package orders

import (
	"encoding/json"
	"time"
)

const EventOrderStatusChanged = "OrderStatusChanged"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// StatusChangedPayload is what the notification dispatcher consumes after
// any transition. Emitted fire-and-forget; delivery and retry are the
// dispatcher's problem.
type StatusChangedPayload struct {
	OrderID        string `json:"order_id"`
	NewStatus      Status `json:"new_status"`
	PreviousStatus Status `json:"previous_status"`
}
