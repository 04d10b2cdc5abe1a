// Package lifecycle encodes the order status machine. Every status mutation
// in the order service goes through ValidateTransition; handlers never compare
// statuses directly.
package lifecycle

import "orderhub/pkg/apperr"

const (
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusProcessing = "PROCESSING"
	StatusShipped    = "SHIPPED"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
	StatusRefunded   = "REFUNDED"
)

// allowed maps each status to the set of statuses it may move to.
// CANCELLED and REFUNDED are terminal and have no entry.
var allowed = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
}

func IsKnown(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// ValidateTransition reports whether an order may move from one status to
// another. Self-transitions are never allowed.
func ValidateTransition(from, to string) error {
	if !IsKnown(to) {
		return apperr.ErrValidation.WithMessage("unknown order status: " + to)
	}
	for _, next := range allowed[from] {
		if next == to {
			return nil
		}
	}
	return apperr.ErrInvalidStatusTransition.
		WithMessage("cannot transition order from " + from + " to " + to)
}

// ValidateCancel gates the user-facing cancel operation, which is narrower
// than a generic transition to CANCELLED.
func ValidateCancel(from string) error {
	switch from {
	case StatusPending, StatusConfirmed, StatusProcessing:
		return nil
	}
	return apperr.ErrOrderNotCancellable.
		WithMessage("order in status " + from + " cannot be cancelled")
}

// ValidateUpdate gates item and address edits. Orders already delivered or in
// a terminal state are frozen.
func ValidateUpdate(from string) error {
	switch from {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return apperr.ErrOrderNotUpdatable.
			WithMessage("order in status " + from + " cannot be updated")
	}
	return nil
}
