package orders

const TopicOrderStatusChanged = "order.status.changed"

// Partition key = order_id so one order's events keep their relative order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
