package pos

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart indicates a checkout was attempted with no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSubmissionInProgress indicates a second submit while one is
	// already in flight for the same cart.
	ErrSubmissionInProgress = errors.New("submission already in progress")
	// ErrServiceUnavailable indicates the sale store could not be reached.
	// The cart is left intact so the operator can retry.
	ErrServiceUnavailable = errors.New("sale storage unavailable")
	// ErrAlreadyRefunded indicates a refund was requested for a sale that
	// has been refunded before. Stock is restored at most once per sale.
	ErrAlreadyRefunded = errors.New("sale already refunded")
)

// InsufficientPaymentError is returned when a cash sale is submitted with
// less tendered than the cart total.
type InsufficientPaymentError struct {
	ShortfallCents int64
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: short %d cents", e.ShortfallCents)
}

// OutOfStockError is reported by the sale store when stock changed since the
// item was added to the cart. Available is the quantity still on hand.
type OutOfStockError struct {
	ProductID string
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s out of stock: %d available", e.ProductID, e.Available)
}

// ValidationError is reported by the sale store for a malformed request
// field, e.g. an unknown product or customer reference.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
