package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict is a unique-constraint violation other than an order-number
	// collision; surfaced immediately, never retried.
	ErrConflict = errors.New("conflict")
	// ErrNumberTaken is an order-number collision. The submit path retries
	// with a fresh number a bounded number of times.
	ErrNumberTaken = errors.New("order number taken")
)

// StateError rejects an illegal status transition. The order is untouched.
type StateError struct {
	From Status
	To   Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("illegal order transition: %s -> %s", e.From, e.To)
}
