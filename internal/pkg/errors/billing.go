package xerrors

import (
	"errors"
	"fmt"
)

// BillingError is the uniform failure of a payment provider call. Message is
// the provider's own message, passed through unchanged.
type BillingError struct {
	Op      string
	Message string
	Err     error
}

func (e *BillingError) Error() string {
	return fmt.Sprintf("Stripe error (%s): %s", e.Op, e.Message)
}

func (e *BillingError) Unwrap() error { return e.Err }

// NewBillingError builds a BillingError for op. An empty message falls back
// to err.Error().
func NewBillingError(op, message string, err error) *BillingError {
	if message == "" && err != nil {
		message = err.Error()
	}
	return &BillingError{Op: op, Message: message, Err: err}
}

// AsBillingError reports whether err carries a BillingError.
func AsBillingError(err error) (*BillingError, bool) {
	var be *BillingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
