package orders

type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Cancellation is only legal before fulfilment starts; processing, shipped
// and delivered orders cannot be cancelled.
var validNext = map[Status]map[Status]bool{
	StatusDraft:      {StatusSubmitted: true, StatusCancelled: true},
	StatusSubmitted:  {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func IsTerminal(s Status) bool {
	return len(validNext[s]) == 0
}

// timestampColumn maps a status to the order column stamped when it is
// reached. Draft has no milestone column.
func timestampColumn(s Status) string {
	switch s {
	case StatusSubmitted:
		return "submitted_at"
	case StatusConfirmed:
		return "confirmed_at"
	case StatusShipped:
		return "shipped_at"
	case StatusDelivered:
		return "delivered_at"
	case StatusCancelled:
		return "cancelled_at"
	default:
		return ""
	}
}
