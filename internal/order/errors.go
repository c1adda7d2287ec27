package order

import (
	"errors"
	"fmt"

	"ms-pos/internal/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrAlreadyPaid        = errors.New("order already has a payment recorded")
	ErrNotReadyForPayment = errors.New("order is not ready for payment")
	ErrVersionConflict    = errors.New("order was modified by another terminal")
)

// InvalidTransitionError reports a status change attempted from a state the
// transition table does not permit. The order is never mutated on failure.
type InvalidTransitionError struct {
	From  models.OrderStatus
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s an order in status %q", e.Event, e.From)
}

func invalidTransition(from models.OrderStatus, event string) error {
	return &InvalidTransitionError{From: from, Event: event}
}
