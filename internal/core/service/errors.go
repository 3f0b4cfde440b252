package service

import (
	"errors"
	"fmt"
)

// Reasons double as the user-facing message for a failed operation.
var (
	ErrStockExceeded   = errors.New("requested quantity exceeds available stock")
	ErrProductNotFound = errors.New("product not found")
	ErrAddFailed       = errors.New("failed to add product")
	ErrRemoveFailed    = errors.New("failed to remove product")
	ErrUpdateFailed    = errors.New("failed to update quantity")
	ErrCartUnavailable = errors.New("cart unavailable")
)

// OpError tags a failed cart operation with its Reason. Err holds the underlying
// cause, if any, and is meant for logs rather than for the user.
type OpError struct {
	Op        string
	ProductID int64
	Reason    error
	Err       error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %d: %v: %v", e.Op, e.ProductID, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %d: %v", e.Op, e.ProductID, e.Reason)
}

func (e *OpError) Is(target error) bool {
	return target == e.Reason
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(op string, productID int64, reason, err error) *OpError {
	return &OpError{Op: op, ProductID: productID, Reason: reason, Err: err}
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Reason.Error()
	}
	return "internal error"
}
