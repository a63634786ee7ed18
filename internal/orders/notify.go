package orders

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/dealerdesk/order-engine/internal/kafka"
)

// Notifier announces committed status transitions. Implementations must not
// block the transition path.
type Notifier interface {
	OrderStatusChanged(orderID string, previous, next Status)
}

// KafkaNotifier publishes status changes through the async producer.
type KafkaNotifier struct {
	Producer *kafkax.Producer
	Service  string
}

func (n *KafkaNotifier) OrderStatusChanged(orderID string, previous, next Status) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      n.Service,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(StatusChangedPayload{
			OrderID:        orderID,
			NewStatus:      next,
			PreviousStatus: previous,
		}),
	}
	n.Producer.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// NopNotifier drops events; used in tests.
type NopNotifier struct{}

func (NopNotifier) OrderStatusChanged(string, Status, Status) {}
