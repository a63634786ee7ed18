package redisx

import "time"

const (
	// Working cart for a dealer: cart:{owner_id}
	KeyCart = "cart:%s"

	// Saved (named) cart: cart:saved:{owner_id}:{cart_id}
	KeySavedCart = "cart:saved:%s:%s"

	// Cached order status: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%s"
)

var (
	TTLWorkingCart = 7 * 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
)
